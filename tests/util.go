package testutil

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
	logsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/logger"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/storage/database"
)

// Config returns a test mode configuration that needs no external service.
func Config() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Gradebook",
		Server: core.ServerConfig{
			DisableReqLogs:  true,
			ShutdownTimeout: time.Second,
		},
		Database: core.DatabaseConfig{Engine: "memory"},
		AI:       core.AIConfig{Timeout: 5 * time.Second},
		Report: core.ReportConfig{
			SessionTTL:    time.Hour,
			LockTTL:       time.Minute,
			SweepSchedule: "@every 1m",
		},
	}
}

// Logger returns a logger that discards everything.
func Logger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", 0), conf)
}

// PrepareDB opens a migrated, empty Postgres database. The test is skipped when TEST_DB_HOST is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST is not set")
	}

	conf := core.NewConfig()
	conf.Database.Engine = "postgres"
	conf.Database.Host = host
	conf.Database.Name = "gradebook_test"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE grades, students, subjects CASCADE"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateStudent(t *testing.T, repo student.Repository, first, last, number string, createdAt ...time.Time) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std, err := repo.CreateStudent(context.Background(), student.Student{
		FirstName:     first,
		LastName:      last,
		StudentNumber: number,
		CreatedAt:     tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateSubject(t *testing.T, repo subject.Repository, name, code string, createdAt ...time.Time) subject.Subject {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sub, err := repo.CreateSubject(context.Background(), subject.Subject{Name: name, Code: code, CreatedAt: tstamp})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

// SetGrade records the four period scores of a student. Empty scores are left blank.
func SetGrade(t *testing.T, repo grade.Repository, studentID, subjectID string, scores [4]string) grade.Grade {
	score := func(s string) null.String { return null.NewString(s, s != "") }
	now := time.Now().UTC()
	g, err := repo.UpsertGrade(context.Background(), grade.Grade{
		StudentID: studentID,
		SubjectID: subjectID,
		Prelim:    score(scores[0]),
		Midterm:   score(scores[1]),
		Semifinal: score(scores[2]),
		Final:     score(scores[3]),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("SetGrade() failed: %v", err)
	}
	return g
}
