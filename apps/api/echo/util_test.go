package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/apps/api/echo"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
	emailsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/email"
	inmemdb "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database/inmem"
	inmemsession "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/session/inmem"
	testutil "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/tests"
)

// stubGenerator answers every prompt with `raw`, or fails with `err`.
type stubGenerator struct {
	mu      sync.Mutex
	raw     string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.raw, g.err
}

func (g *stubGenerator) set(raw string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.raw, g.err = raw, err
}

type testApp struct {
	server      *echoapi.Server
	studentRepo student.Repository
	subjectRepo subject.Repository
	gradeRepo   grade.Repository
	generator   *stubGenerator
	mailSvc     *emailsvc.ConsoleServiceMock
}

// setup serves a fresh in-memory app. The report service uses `gen` when given, app.generator otherwise.
func setup(t *testing.T, gen ...report.Generator) *testApp {
	conf := testutil.Config()
	logger := testutil.Logger(conf)

	// set up DB & repos
	db := inmemdb.Open()
	app := &testApp{
		studentRepo: inmemdb.NewStudentRepository(db),
		subjectRepo: inmemdb.NewSubjectRepository(db),
		gradeRepo:   inmemdb.NewGradeRepository(db),
		generator:   new(stubGenerator),
		mailSvc:     emailsvc.NewConsoleServiceMock(conf, logger),
	}

	// set up services
	translator := core.NewTranslator()
	studentSvc := student.NewService(app.studentRepo)
	subjectSvc := subject.NewService(app.subjectRepo)
	gradeSvc := grade.NewService(app.gradeRepo)
	var generator report.Generator = app.generator
	if len(gen) > 0 {
		generator = gen[0]
	}
	reportSvc, err := report.NewService(
		subjectSvc, gradeSvc, generator,
		inmemsession.NewStore(conf.Report, logger),
		app.mailSvc, logger, conf.AI.Timeout,
	)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	// set up server
	app.server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   core.NewValidator(translator),
		Translator: translator,
		StudentSvc: studentSvc,
		SubjectSvc: subjectSvc,
		GradeSvc:   gradeSvc,
		ReportSvc:  reportSvc,
	})
	t.Cleanup(func() { _ = app.server.Close() })
	return app
}

func (app *testApp) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode(%s) failed: %v", rec.Body.String(), err)
	}
}

func TestServer_home(t *testing.T) {
	app := setup(t)
	rec := app.do(http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Gradebook API!", rec.Body.String())
}

func TestServer_notFound(t *testing.T) {
	app := setup(t)
	rec := app.do(http.MethodGet, "/v1/lol")
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Not Found"})}, rec)
}
