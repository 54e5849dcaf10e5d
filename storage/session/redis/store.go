package redissession

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
)

const (
	keyPrefix    = "gradebook:report:"
	timedOutText = "report generation timed out"
)

var (
	// finish writes the session and releases the lock if the lock still belongs to the attempt.
	// KEYS: lock, session. ARGV: attempt, payload, ttl (ms).
	finishScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
redis.call("DEL", KEYS[1])
return 1
`)

	// discard drops the session unless a generation holds the lock.
	// KEYS: lock, session.
	discardScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("DEL", KEYS[2])
return 1
`)
)

// record is the stored form of a session. The attempt is kept out of the API representation.
type record struct {
	Session report.Session `json:"session"`
	Attempt string         `json:"attempt,omitempty"`
}

// Store keeps report sessions in Redis, so several API instances share them.
// The generation lock is a SETNX key expiring after the lock TTL.
type Store struct {
	rdb        *redis.Client
	sessionTTL time.Duration
	lockTTL    time.Duration
	nowFunc    func() time.Time
}

func NewStore(rdb *redis.Client, conf core.ReportConfig) *Store {
	return &Store{
		rdb:        rdb,
		sessionTTL: conf.SessionTTL,
		lockTTL:    conf.LockTTL,
		nowFunc:    func() time.Time { return time.Now().UTC() },
	}
}

// Connect opens a client and checks the connection.
func Connect(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rdb, nil
}

func lockKey(subjectID string) string    { return keyPrefix + "lock:" + subjectID }
func sessionKey(subjectID string) string { return keyPrefix + "session:" + subjectID }

func (st *Store) load(ctx context.Context, subjectID string) (report.Session, bool, error) {
	data, err := st.rdb.Get(ctx, sessionKey(subjectID)).Bytes()
	if err == redis.Nil {
		return report.NewSession(subjectID, st.nowFunc()), false, nil
	}
	if err != nil {
		return report.Session{}, false, errors.Wrap(err, "reading report session")
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return report.Session{}, false, errors.Wrap(err, "decoding report session")
	}
	rec.Session.Attempt = rec.Attempt
	return rec.Session, true, nil
}

func encode(sess report.Session) (string, error) {
	data, err := json.Marshal(record{Session: sess, Attempt: sess.Attempt})
	if err != nil {
		return "", errors.Wrap(err, "encoding report session")
	}
	return string(data), nil
}

func (st *Store) Begin(ctx context.Context, subjectID string) (report.Session, error) {
	sess := report.NewSession(subjectID, st.nowFunc())
	if err := sess.Begin(st.nowFunc(), st.lockTTL); err != nil {
		return report.Session{}, err
	}

	ok, err := st.rdb.SetNX(ctx, lockKey(subjectID), sess.Attempt, st.lockTTL).Result()
	if err != nil {
		return report.Session{}, errors.Wrap(err, "acquiring report lock")
	}
	if !ok {
		return report.Session{}, report.ErrBusy
	}

	payload, err := encode(sess)
	if err != nil {
		return report.Session{}, err
	}
	if err := st.rdb.Set(ctx, sessionKey(subjectID), payload, st.sessionTTL).Err(); err != nil {
		return report.Session{}, errors.Wrap(err, "writing report session")
	}
	return sess, nil
}

func (st *Store) finish(ctx context.Context, subjectID, attempt string, apply func(*report.Session) error) (report.Session, error) {
	sess, found, err := st.load(ctx, subjectID)
	if err != nil {
		return report.Session{}, err
	}
	if !found {
		// session expired before the lock did
		now := st.nowFunc()
		sess = report.Session{SubjectID: subjectID, State: report.StateGenerating, Attempt: attempt, UpdatedAt: now}
	}
	if err := apply(&sess); err != nil {
		return report.Session{}, err
	}

	payload, err := encode(sess)
	if err != nil {
		return report.Session{}, err
	}
	keys := []string{lockKey(subjectID), sessionKey(subjectID)}
	n, err := finishScript.Run(ctx, st.rdb, keys, attempt, payload, st.sessionTTL.Milliseconds()).Int()
	if err != nil {
		return report.Session{}, errors.Wrap(err, "writing report session")
	}
	if n == 0 {
		return report.Session{}, report.ErrAttemptExpired
	}
	return sess, nil
}

func (st *Store) Complete(ctx context.Context, subjectID, attempt string, result report.Analysis, v report.Verification) (report.Session, error) {
	return st.finish(ctx, subjectID, attempt, func(sess *report.Session) error {
		return sess.Complete(attempt, result, v, st.nowFunc())
	})
}

func (st *Store) Fail(ctx context.Context, subjectID, attempt, reason string) (report.Session, error) {
	return st.finish(ctx, subjectID, attempt, func(sess *report.Session) error {
		return sess.Fail(attempt, reason, st.nowFunc())
	})
}

func (st *Store) Get(ctx context.Context, subjectID string) (report.Session, error) {
	sess, _, err := st.load(ctx, subjectID)
	if err != nil {
		return report.Session{}, err
	}
	if sess.State != report.StateGenerating {
		return sess, nil
	}

	// a generating session without its lock outlived the lock TTL
	n, err := st.rdb.Exists(ctx, lockKey(subjectID)).Result()
	if err != nil {
		return report.Session{}, errors.Wrap(err, "checking report lock")
	}
	if n == 0 {
		_ = sess.Fail(sess.Attempt, timedOutText, st.nowFunc())
	}
	return sess, nil
}

func (st *Store) Discard(ctx context.Context, subjectID string) (report.Session, error) {
	keys := []string{lockKey(subjectID), sessionKey(subjectID)}
	n, err := discardScript.Run(ctx, st.rdb, keys).Int()
	if err != nil {
		return report.Session{}, errors.Wrap(err, "discarding report session")
	}
	if n == 0 {
		return st.Get(ctx, subjectID)
	}
	return report.NewSession(subjectID, st.nowFunc()), nil
}
