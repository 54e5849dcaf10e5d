package echoapi_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
	testutil "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/tests"
)

const modelAnswer = "```json\n" + `{
	"analysis": "Most of the class is on track.",
	"passedStudents": ["Ada Lovelace"],
	"failedStudents": ["Alan Turing"]
}` + "\n```"

func setupReport(t *testing.T, gen ...report.Generator) (*testApp, string) {
	app := setup(t, gen...)
	ada := testutil.CreateStudent(t, app.studentRepo, "Ada", "Lovelace", "2024-001")
	alan := testutil.CreateStudent(t, app.studentRepo, "Alan", "Turing", "2024-002")
	sub := testutil.CreateSubject(t, app.subjectRepo, "Algorithms", "CS201")
	testutil.SetGrade(t, app.gradeRepo, ada.ID, sub.ID, [4]string{"90", "88", "92", "95"})
	testutil.SetGrade(t, app.gradeRepo, alan.ID, sub.ID, [4]string{"60", "", "65", "70"})
	return app, "/v1/subjects/" + sub.ID + "/report"
}

func Test_reportApi_generate(t *testing.T) {
	app, path := setupReport(t)
	app.generator.set(modelAnswer, nil)

	rec := app.do(http.MethodPost, path)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var status report.Status
	decode(t, rec, &status)
	assert.Equal(t, report.StateReady, status.State)
	require.NotNil(t, status.Result)
	assert.Equal(t, []string{"Ada Lovelace"}, status.Result.PassedStudents)
	assert.Equal(t, []string{"Alan Turing"}, status.Result.FailedStudents)
	require.NotNil(t, status.Verification)
	assert.Empty(t, status.Verification.Disagreements)
	assert.Contains(t, status.Text, "AI Analysis Report - Algorithms")
	assert.Contains(t, status.Text, "Passed Students (1):")
	assert.Contains(t, status.Text, "• Alan Turing")

	// the prompt carries every grade row
	require.Len(t, app.generator.prompts, 1)
	assert.Contains(t, app.generator.prompts[0], "Ada Lovelace")
	assert.Contains(t, app.generator.prompts[0], "N/A")

	// the result stays until discarded
	rec = app.do(http.MethodGet, path)
	var got report.Status
	decode(t, rec, &got)
	assert.Equal(t, report.StateReady, got.State)
	assert.Equal(t, status.Text, got.Text)

	rec = app.do(http.MethodDelete, path)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &got)
	assert.Equal(t, report.StateIdle, got.State)
	assert.Nil(t, got.Result)

	rec = app.do(http.MethodGet, path+"/pdf")
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: report.ErrNotReady.Error()})}, rec)
}

func Test_reportApi_generate_failures(t *testing.T) {
	app, path := setupReport(t)
	failed := marchallObj(t, httpErr{Error: "failed to generate AI report"})

	app.generator.set("", errors.New("quota exceeded"))
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadGateway, wantData: failed}, app.do(http.MethodPost, path))

	var got report.Status
	decode(t, app.do(http.MethodGet, path), &got)
	assert.Equal(t, report.StateIdle, got.State)
	assert.Nil(t, got.Result)
	assert.Equal(t, "failed to generate AI report", got.LastError)

	// a later attempt may succeed
	app.generator.set(modelAnswer, nil)
	assert.Equal(t, http.StatusOK, app.do(http.MethodPost, path).Code)

	// unknown subject
	rec := app.do(http.MethodPost, "/v1/subjects/"+uuid.NewString()+"/report")
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: subject.ErrNotFound.Error()})}, rec)
}

func Test_reportApi_generate_unparseable(t *testing.T) {
	app, path := setupReport(t)
	app.generator.set("The class did fine overall.", nil)

	rec := app.do(http.MethodPost, path)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var status report.Status
	decode(t, rec, &status)
	require.NotNil(t, status.Result)
	assert.Equal(t, "The class did fine overall.", status.Result.Analysis)
	assert.Empty(t, status.Result.PassedStudents)
	assert.Contains(t, status.Text, "Passed Students (0):")
	assert.Contains(t, status.Text, "None")
}

// blockingGenerator waits for release before answering.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	close(g.started)
	select {
	case <-g.release:
		return modelAnswer, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func Test_reportApi_generate_busy(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	app, path := setupReport(t, gen)

	done := make(chan int)
	go func() { done <- app.do(http.MethodPost, path).Code }()
	<-gen.started

	rec := app.do(http.MethodPost, path)
	checkCodeAndData(t, httpTest{wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: report.ErrBusy.Error()})}, rec)

	var got report.Status
	decode(t, app.do(http.MethodGet, path), &got)
	assert.Equal(t, report.StateGenerating, got.State)

	// discarding while generating changes nothing
	decode(t, app.do(http.MethodDelete, path), &got)
	assert.Equal(t, report.StateGenerating, got.State)

	close(gen.release)
	assert.Equal(t, http.StatusOK, <-done)
	decode(t, app.do(http.MethodGet, path), &got)
	assert.Equal(t, report.StateReady, got.State)
}

func Test_reportApi_pdf(t *testing.T) {
	app, path := setupReport(t)
	app.generator.set(modelAnswer, nil)
	require.Equal(t, http.StatusOK, app.do(http.MethodPost, path).Code)

	tests := []struct {
		name        string
		path        string
		disposition string
	}{
		{name: "preview", path: path + "/preview", disposition: `inline; filename="AI_Report_Algorithms.pdf"`},
		{name: "download", path: path + "/pdf", disposition: `attachment; filename="AI_Report_Algorithms.pdf"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.disposition, rec.Header().Get("Content-Disposition"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
		})
	}
}

func Test_reportApi_email(t *testing.T) {
	app, path := setupReport(t)

	tests := []httpTest{
		{
			name: "no recipients", body: []byte(`{"to": []}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"to": "to must contain at least 1 item"}),
		},
		{
			name: "invalid recipient", body: []byte(`{"to": ["lol"]}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"to[0]": "to[0] must be a valid email address"}),
		},
		{
			name: "not ready", body: []byte(`{"to": ["teacher@school.edu"]}`), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: report.ErrNotReady.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(http.MethodPost, path+"/email", tt.body))
		})
	}
	assert.Empty(t, app.mailSvc.SentMessages())

	app.generator.set(modelAnswer, nil)
	require.Equal(t, http.StatusOK, app.do(http.MethodPost, path).Code)

	rec := app.do(http.MethodPost, path+"/email", []byte(`{"to": ["teacher@school.edu", " head@school.edu "]}`))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	sent := app.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Len(t, msg.To, 2)
	assert.Equal(t, "head@school.edu", msg.To[1].Address)
	assert.Contains(t, msg.Subject, "AI Analysis Report - Algorithms")
	assert.True(t, strings.Contains(msg.TextContent, "Algorithms"), fmt.Sprintf("text: %s", msg.TextContent))
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "AI_Report_Algorithms.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
}
