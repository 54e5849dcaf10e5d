package inmemsession

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
)

const timedOutText = "report generation timed out"

// Store keeps report sessions in process memory.
type Store struct {
	mutex      sync.Mutex
	sessions   map[string]*report.Session
	sessionTTL time.Duration
	lockTTL    time.Duration
	nowFunc    func() time.Time
	logger     core.Logger
	cron       *cron.Cron
}

func NewStore(conf core.ReportConfig, logger core.Logger) *Store {
	return &Store{
		sessions:   make(map[string]*report.Session),
		sessionTTL: conf.SessionTTL,
		lockTTL:    conf.LockTTL,
		nowFunc:    func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

func (st *Store) session(subjectID string) *report.Session {
	sess, ok := st.sessions[subjectID]
	if !ok {
		s := report.NewSession(subjectID, st.nowFunc())
		sess = &s
		st.sessions[subjectID] = sess
	}
	return sess
}

func (st *Store) Begin(_ context.Context, subjectID string) (report.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sess := st.session(subjectID)
	if err := sess.Begin(st.nowFunc(), st.lockTTL); err != nil {
		return report.Session{}, err
	}
	return *sess, nil
}

func (st *Store) Complete(_ context.Context, subjectID, attempt string, result report.Analysis, v report.Verification) (report.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sess := st.session(subjectID)
	if err := sess.Complete(attempt, result, v, st.nowFunc()); err != nil {
		return report.Session{}, err
	}
	return *sess, nil
}

func (st *Store) Fail(_ context.Context, subjectID, attempt, reason string) (report.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sess := st.session(subjectID)
	if err := sess.Fail(attempt, reason, st.nowFunc()); err != nil {
		return report.Session{}, err
	}
	return *sess, nil
}

func (st *Store) Get(_ context.Context, subjectID string) (report.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if sess, ok := st.sessions[subjectID]; ok {
		return *sess, nil
	}
	return report.NewSession(subjectID, st.nowFunc()), nil
}

func (st *Store) Discard(_ context.Context, subjectID string) (report.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sess, ok := st.sessions[subjectID]
	if !ok {
		return report.NewSession(subjectID, st.nowFunc()), nil
	}
	sess.Discard(st.nowFunc())
	if sess.State == report.StateIdle {
		delete(st.sessions, subjectID)
	}
	return *sess, nil
}

// Sweep drops sessions untouched for longer than the session TTL and fails
// generations that outlived the lock TTL. It returns the number of sessions changed.
func (st *Store) Sweep() int {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	now := st.nowFunc()
	var n int
	for id, sess := range st.sessions {
		switch {
		case sess.Stale(now, st.lockTTL):
			_ = sess.Fail(sess.Attempt, timedOutText, now)
			n++
		case sess.State != report.StateGenerating && now.Sub(sess.UpdatedAt) > st.sessionTTL:
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep on the given cron schedule until Stop is called.
func (st *Store) StartSweeper(schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		if n := st.Sweep(); n > 0 && st.logger != nil {
			st.logger.Info("report sessions swept", "count", n)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "scheduling session sweeper %q", schedule)
	}
	st.cron = c
	c.Start()
	return nil
}

// Stop stops the sweeper and waits for a running sweep to finish.
func (st *Store) Stop() {
	if st.cron != nil {
		<-st.cron.Stop().Done()
	}
}
