package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
	emailsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/email"
	inmemdb "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database/inmem"
	inmemsession "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/session/inmem"
	testutil "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/tests"
)

var (
	stdRepo student.Repository
	subRepo subject.Repository
	grdRepo grade.Repository
)

type fixedGenerator string

func (g fixedGenerator) Generate(context.Context, string) (string, error) {
	return string(g), nil
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := testutil.Config()
	lg := testutil.Logger(conf)

	// set up DB & repos
	db := inmemdb.Open()
	stdRepo = inmemdb.NewStudentRepository(db)
	subRepo = inmemdb.NewSubjectRepository(db)
	grdRepo = inmemdb.NewGradeRepository(db)

	subjectSvc := subject.NewService(subRepo)
	gradeSvc := grade.NewService(grdRepo)
	reportSvc, err := report.NewService(
		subjectSvc, gradeSvc,
		fixedGenerator(`{"analysis": "Fine.", "passedStudents": ["Ada Lovelace"], "failedStudents": []}`),
		inmemsession.NewStore(conf.Report, lg),
		emailsvc.NewConsoleServiceMock(conf, lg),
		lg, conf.AI.Timeout,
	)
	require.NoError(t, err)

	// start CLI
	out := new(bytes.Buffer)
	return &commandLine{
		studentSvc: student.NewService(stdRepo),
		subjectSvc: subjectSvc,
		gradeSvc:   gradeSvc,
		reportSvc:  reportSvc,
		out:        out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	if err == nil {
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
		return
	}
	if tt.wantErr != nil {
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	} else if tt.wantErrStr != "" {
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	} else {
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "deletestudent: no id", args: []string{"deletestudent"}, wantErr: errHelp},
		{name: "exportgrades: no subject", args: []string{"exportgrades"}, wantErr: errHelp},
		{name: "report: no subject", args: []string{"report", "-out", "x.pdf"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	// without a database
	checkErr(t, cliTest{wantErr: errNoDB}, cli.run([]string{"admin", "migrate", "up"}))

	cli.db = new(sqlx.DB)
	migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_deleteStudent(t *testing.T) {
	cli, out := setup(t)
	ada := testutil.CreateStudent(t, stdRepo, "Ada", "Lovelace", "2024-001")
	alan := testutil.CreateStudent(t, stdRepo, "Alan", "Turing", "2024-002")
	grace := testutil.CreateStudent(t, stdRepo, "Grace", "Hopper", "2024-003")

	type extra struct {
		terminal bool
		answer   string
	}
	tests := []cliTest{
		{name: "not found", args: []string{"deletestudent", "-id", "lol"}, wantErr: student.ErrNotFound},
		{name: "not a terminal", args: []string{"deletestudent", "-id", ada.ID}, wantErr: errNotTerminal},
		{name: "aborted", args: []string{"deletestudent", "-id", ada.ID}, extra: extra{terminal: true, answer: "n\n"}, wantErr: errAborted},
		{name: "confirmed", args: []string{"deletestudent", "-id", ada.ID}, extra: extra{terminal: true, answer: "Y\n"}},
		{name: "-yes", args: []string{"deletestudent", "-id", alan.ID, "-yes"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		ex, _ := tt.extra.(extra)
		isTerminalFunc = func(int) bool { return ex.terminal }
		stdin = strings.NewReader(ex.answer)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	students, err := stdRepo.QueryStudents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, grace.ID, students[0].ID)
	assert.Contains(t, out.String(), "Delete this student? [y/N]: ")
	assert.Contains(t, out.String(), "Ada Lovelace (2024-001)")
}

func Test_commandLine_exportGrades_report(t *testing.T) {
	cli, out := setup(t)
	ada := testutil.CreateStudent(t, stdRepo, "Ada", "Lovelace", "2024-001")
	sub := testutil.CreateSubject(t, subRepo, "Algorithms", "CS201")
	testutil.SetGrade(t, grdRepo, ada.ID, sub.ID, [4]string{"90", "90", "90", "90"})

	dir := t.TempDir()
	xlsx := filepath.Join(dir, "grades.xlsx")
	pdf := filepath.Join(dir, "report.pdf")

	require.NoError(t, cli.run([]string{"admin", "exportgrades", "-subject", sub.ID, "-out", xlsx}))
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	require.NoError(t, cli.run([]string{"admin", "report", "-subject", sub.ID, "-out", pdf}))
	content, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	assert.Contains(t, out.String(), "Passed Students (1):")

	err = cli.run([]string{"admin", "exportgrades", "-subject", "lol", "-out", xlsx})
	assert.Equal(t, subject.ErrNotFound, err)
}
