package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrBusy           = errors.New("a report is already being generated for this subject")
	ErrNotReady       = errors.New("no report is available for this subject")
	ErrAttemptExpired = errors.New("report generation attempt expired")
)

type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
)

// Session is the report state of one subject.
// A failed attempt goes back to idle with LastError set and no result.
type Session struct {
	SubjectID    string        `json:"subject_id"`
	State        State         `json:"state"`
	Attempt      string        `json:"-"`
	Result       *Analysis     `json:"result"`
	Verification *Verification `json:"verification,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// SessionStore keeps report sessions per subject. Begin must be atomic:
// at most one attempt per subject is generating at a time.
type SessionStore interface {
	Begin(ctx context.Context, subjectID string) (Session, error)
	Complete(ctx context.Context, subjectID, attempt string, result Analysis, v Verification) (Session, error)
	Fail(ctx context.Context, subjectID, attempt, reason string) (Session, error)
	// Get returns an idle session for unknown subjects.
	Get(ctx context.Context, subjectID string) (Session, error)
	// Discard drops a ready result. A generating session is left untouched.
	Discard(ctx context.Context, subjectID string) (Session, error)
}

func NewSession(subjectID string, now time.Time) Session {
	return Session{SubjectID: subjectID, State: StateIdle, UpdatedAt: now}
}

// Stale reports whether a generating session outlived lockTTL.
func (s Session) Stale(now time.Time, lockTTL time.Duration) bool {
	return s.State == StateGenerating && s.StartedAt != nil && now.Sub(*s.StartedAt) > lockTTL
}

// Begin starts a new attempt, dropping any previous result.
func (s *Session) Begin(now time.Time, lockTTL time.Duration) error {
	if s.State == StateGenerating && !s.Stale(now, lockTTL) {
		return ErrBusy
	}
	s.State = StateGenerating
	s.Attempt = uuid.NewString()
	s.Result = nil
	s.Verification = nil
	s.LastError = ""
	s.StartedAt = &now
	s.CompletedAt = nil
	s.UpdatedAt = now
	return nil
}

func (s *Session) Complete(attempt string, result Analysis, v Verification, now time.Time) error {
	if s.State != StateGenerating || s.Attempt != attempt {
		return ErrAttemptExpired
	}
	s.State = StateReady
	s.Attempt = ""
	s.Result = &result
	s.Verification = &v
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

func (s *Session) Fail(attempt, reason string, now time.Time) error {
	if s.State != StateGenerating || s.Attempt != attempt {
		return ErrAttemptExpired
	}
	s.State = StateIdle
	s.Attempt = ""
	s.Result = nil
	s.Verification = nil
	s.LastError = reason
	s.StartedAt = nil
	s.UpdatedAt = now
	return nil
}

func (s *Session) Discard(now time.Time) {
	if s.State == StateGenerating {
		return
	}
	s.State = StateIdle
	s.Result = nil
	s.Verification = nil
	s.LastError = ""
	s.StartedAt = nil
	s.CompletedAt = nil
	s.UpdatedAt = now
}
