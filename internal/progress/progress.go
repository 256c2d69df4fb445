// Package progress implements the task progress channel: one record per
// task id, written by the owning task and polled by clients.
package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"shortforge/internal/pkg/errors"
)

// Status values for a progress record.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// Record is the unit a poller reads: coarse stage-local progress, a human
// message, and a result payload once complete.
type Record struct {
	Status   string         `json:"status"`
	Progress int            `json:"progress"`
	Message  string         `json:"message,omitempty"`
	Result   map[string]any `json:"result,omitempty"`
}

// terminal reports whether a status admits no further transitions.
func terminal(status string) bool {
	return status == StatusComplete || status == StatusError
}

// apply merges next into prev, enforcing the state machine:
// pending -> processing (repeatable) -> complete|error. Terminal states are
// immutable. Progress values may move backwards between stages; only the
// status ordering is guarded. Returns the record to store and whether the
// transition is allowed.
func apply(prev, next Record) (Record, bool) {
	if terminal(prev.Status) {
		return prev, false
	}
	switch next.Status {
	case StatusPending, StatusProcessing, StatusComplete, StatusError:
	default:
		return prev, false
	}
	if next.Progress < 0 {
		next.Progress = 0
	}
	if next.Progress > 100 {
		next.Progress = 100
	}
	return next, true
}

// Store keeps records in Redis keyed by task id. Completed and failed
// records expire after the configured TTL; in-flight records persist until
// their task finishes.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(taskID string) string {
	return "shortforge:progress:" + taskID
}

// Get returns the record for a task id. Unknown ids read as pending/0 so
// pollers racing task startup see a sane default.
func (s *Store) Get(ctx context.Context, taskID string) (Record, error) {
	raw, err := s.rdb.Get(ctx, key(taskID)).Bytes()
	return decodeRecord(raw, err)
}

// decodeRecord turns a raw Redis read into a Record. A missing key is not
// an error: it decodes to the pending/0 default.
func decodeRecord(raw []byte, err error) (Record, error) {
	if err == redis.Nil {
		return Record{Status: StatusPending, Progress: 0}, nil
	}
	if err != nil {
		return Record{}, errors.Wrap(err, "progress.get", "redis read failed")
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, errors.Wrap(err, "progress.get", "corrupt progress record")
	}
	return rec, nil
}

// Set transitions the task's record. Illegal transitions (writes after a
// terminal state) are silently dropped; the record is owned by one task so
// this only fires when a stage reports late after a failure.
func (s *Store) Set(ctx context.Context, taskID string, next Record) error {
	prev, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}

	rec, ok := apply(prev, next)
	if !ok {
		return nil
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "progress.set", "marshal failed")
	}

	var expire time.Duration
	if terminal(rec.Status) {
		expire = s.ttl
	}
	if err := s.rdb.Set(ctx, key(taskID), raw, expire).Err(); err != nil {
		return errors.Wrap(err, "progress.set", "redis write failed")
	}
	return nil
}

// Pending initializes the record at task creation time.
func (s *Store) Pending(ctx context.Context, taskID string) error {
	return s.Set(ctx, taskID, Record{Status: StatusPending, Progress: 0})
}

// Processing reports stage progress with a human-readable message.
func (s *Store) Processing(ctx context.Context, taskID string, pct int, msg string) error {
	return s.Set(ctx, taskID, Record{Status: StatusProcessing, Progress: pct, Message: msg})
}

// Complete finalizes the record with a result payload.
func (s *Store) Complete(ctx context.Context, taskID string, result map[string]any, msg string) error {
	return s.Set(ctx, taskID, Record{Status: StatusComplete, Progress: 100, Message: msg, Result: result})
}

// Fail finalizes the record with an error message.
func (s *Store) Fail(ctx context.Context, taskID string, msg string) error {
	return s.Set(ctx, taskID, Record{Status: StatusError, Progress: 100, Message: msg})
}
