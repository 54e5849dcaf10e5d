package aisvc

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
)

var (
	ErrNoAPIKey    = errors.New("missing Gemini API key")
	ErrEmptyOutput = errors.New("model returned no candidates")
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator sends report prompts to a Gemini model.
type GeminiGenerator struct {
	client *genai.Client
	model  contentGenerator
}

var _ report.Generator = (*GeminiGenerator)(nil)

func NewGeminiGenerator(ctx context.Context, conf core.AIConfig) (*GeminiGenerator, error) {
	if conf.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(conf.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, "creating Gemini client")
	}
	return &GeminiGenerator{client: client, model: client.GenerativeModel(conf.Model)}, nil
}

// Generate sends the prompt as a single text part and returns the text of the first candidate.
// Failures are not retried.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, "generating content")
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyOutput
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}

func (g *GeminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// DisabledGenerator fails every report with Err. It stands in when no model is configured.
type DisabledGenerator struct {
	Err error
}

func (g DisabledGenerator) Generate(context.Context, string) (string, error) {
	return "", g.Err
}
