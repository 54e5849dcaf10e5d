package report

import (
	"bytes"
	"context"
	"net/mail"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
)

// ErrGenerationFailed wraps any store or model failure during generation.
var ErrGenerationFailed = errors.New("failed to generate AI report")

const pdfContentType = "application/pdf"

type (
	// Generator sends a prompt to a language model and returns its raw text.
	Generator interface {
		Generate(ctx context.Context, prompt string) (string, error)
	}

	SubjectGetter interface {
		GetByID(ctx context.Context, id string) (subject.Subject, error)
	}

	GradeLister interface {
		ForSubject(ctx context.Context, subjectID string) ([]grade.StudentGrade, error)
	}

	// Status is a session as shown to clients, with the on-screen text when ready.
	Status struct {
		Session
		Text string `json:"text,omitempty"`
	}

	Service struct {
		subjects  SubjectGetter
		grades    GradeLister
		generator Generator
		sessions  SessionStore
		mailer    core.EmailService
		logger    core.Logger
		timeout   time.Duration
	}
)

func NewService(
	subjects SubjectGetter,
	grades GradeLister,
	generator Generator,
	sessions SessionStore,
	mailer core.EmailService,
	logger core.Logger,
	timeout time.Duration,
) (*Service, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(subjects, "subjects"),
		vala.IsNotNil(grades, "grades"),
		vala.IsNotNil(generator, "generator"),
		vala.IsNotNil(sessions, "sessions"),
		vala.IsNotNil(mailer, "mailer"),
		vala.IsNotNil(logger, "logger"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "report.NewService")
	}
	return &Service{
		subjects:  subjects,
		grades:    grades,
		generator: generator,
		sessions:  sessions,
		mailer:    mailer,
		logger:    logger,
		timeout:   timeout,
	}, nil
}

// Generate runs one report attempt for the subject and waits for it to finish.
// The model call is not cancelled when ctx is; it is bounded by the service timeout.
func (svc *Service) Generate(ctx context.Context, subjectID string) (Status, error) {
	sub, err := svc.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return Status{}, err
	}

	ctx = context.WithoutCancel(ctx)
	sess, err := svc.sessions.Begin(ctx, subjectID)
	if err != nil {
		return Status{}, errors.Wrap(err, "beginning report session")
	}

	analysis, verification, err := svc.analyze(ctx, subjectID)
	if err != nil {
		if _, ferr := svc.sessions.Fail(ctx, subjectID, sess.Attempt, ErrGenerationFailed.Error()); ferr != nil {
			svc.logger.Error("report.Generate: recording failure: "+ferr.Error(), ferr)
		}
		return Status{}, errors.Wrap(ErrGenerationFailed, err.Error())
	}

	sess, err = svc.sessions.Complete(ctx, subjectID, sess.Attempt, analysis, verification)
	if err != nil {
		return Status{}, errors.Wrap(err, "completing report session")
	}
	return newStatus(sess, sub.Name), nil
}

func (svc *Service) analyze(ctx context.Context, subjectID string) (Analysis, Verification, error) {
	rows, err := svc.grades.ForSubject(ctx, subjectID)
	if err != nil {
		return Analysis{}, Verification{}, errors.Wrap(err, "fetching grade rows")
	}

	genCtx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()
	raw, err := svc.generator.Generate(genCtx, BuildPrompt(rows))
	if err != nil {
		return Analysis{}, Verification{}, errors.Wrap(err, "calling model")
	}

	analysis := Parse(raw)
	return analysis, Verify(analysis, rows), nil
}

func newStatus(sess Session, subjectName string) Status {
	st := Status{Session: sess}
	if sess.State == StateReady && sess.Result != nil {
		st.Text = NewView(*sess.Result, subjectName).Text()
	}
	return st
}

// subjectName returns "" for subjects deleted since the report was generated.
func (svc *Service) subjectName(ctx context.Context, subjectID string) (string, error) {
	sub, err := svc.subjects.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return sub.Name, nil
}

func (svc *Service) Get(ctx context.Context, subjectID string) (Status, error) {
	sess, err := svc.sessions.Get(ctx, subjectID)
	if err != nil {
		return Status{}, err
	}
	name, err := svc.subjectName(ctx, subjectID)
	if err != nil {
		return Status{}, err
	}
	return newStatus(sess, name), nil
}

// Discard closes the report view of the subject.
func (svc *Service) Discard(ctx context.Context, subjectID string) (Status, error) {
	sess, err := svc.sessions.Discard(ctx, subjectID)
	if err != nil {
		return Status{}, err
	}
	return Status{Session: sess}, nil
}

func (svc *Service) ready(ctx context.Context, subjectID string) (Session, View, error) {
	sess, err := svc.sessions.Get(ctx, subjectID)
	if err != nil {
		return Session{}, View{}, err
	}
	if sess.State != StateReady || sess.Result == nil {
		return Session{}, View{}, ErrNotReady
	}
	name, err := svc.subjectName(ctx, subjectID)
	if err != nil {
		return Session{}, View{}, err
	}
	return sess, NewView(*sess.Result, name), nil
}

func generatedAt(sess Session) time.Time {
	if sess.CompletedAt != nil {
		return *sess.CompletedAt
	}
	return sess.UpdatedAt
}

// PDF renders the ready report of the subject and returns its download name.
func (svc *Service) PDF(ctx context.Context, subjectID string) (string, []byte, error) {
	sess, view, err := svc.ready(ctx, subjectID)
	if err != nil {
		return "", nil, err
	}
	var buf bytes.Buffer
	if err := RenderPDF(&buf, view, generatedAt(sess)); err != nil {
		return "", nil, err
	}
	return Filename(view.Subject), buf.Bytes(), nil
}

// Email sends the ready report of the subject as a PDF attachment.
func (svc *Service) Email(ctx context.Context, subjectID string, to []mail.Address) error {
	if len(to) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "to", Error: "this field is required"})
	}

	sess, view, err := svc.ready(ctx, subjectID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := RenderPDF(&buf, view, generatedAt(sess)); err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:           to,
		Subject:      view.Title(),
		TemplateName: "report",
		TemplateData: map[string]interface{}{
			"SubjectName": view.SubjectLabel(),
			"PassedCount": len(view.Passed.Names),
			"FailedCount": len(view.Failed.Names),
			"GeneratedAt": generatedAt(sess).Format(time.RFC1123),
		},
	}
	if err := msg.Attach(&buf, Filename(view.Subject), pdfContentType); err != nil {
		return err
	}
	svc.mailer.SendMessages(msg)
	return nil
}
