package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
)

type TaskStore struct {
	db *pgxpool.Pool
}

func NewTaskStore(db *pgxpool.Pool) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	params, _ := json.Marshal(t.Params)

	err := s.db.QueryRow(ctx, `
		INSERT INTO tasks (id, kind, status, params)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, t.ID, t.Kind, models.TaskQueued, params).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.AlreadyExists("task", t.ID)
		}
		return errors.Wrap(err, "tasks.create", "db insert failed")
	}
	t.Status = models.TaskQueued
	return nil
}

func (s *TaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	var (
		t      models.Task
		params []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, kind, status, params, COALESCE(error_text,''), created_at, started_at, finished_at
		FROM tasks WHERE id=$1
	`, id).Scan(&t.ID, &t.Kind, &t.Status, &params, &t.ErrorText, &t.CreatedAt, &t.StartedAt, &t.FinishedAt)
	if err != nil {
		return nil, errors.NotFound("task", id)
	}

	_ = json.Unmarshal(params, &t.Params)
	return &t, nil
}

// MarkRunning stamps the start of processing.
func (s *TaskStore) MarkRunning(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE tasks SET status=$2, started_at=$3 WHERE id=$1
	`, id, models.TaskRunning, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "tasks.running", "db update failed")
	}
	return nil
}

// MarkDone stamps successful completion.
func (s *TaskStore) MarkDone(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE tasks SET status=$2, finished_at=$3 WHERE id=$1
	`, id, models.TaskDone, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "tasks.done", "db update failed")
	}
	return nil
}

// MarkFailed records the failure reason, truncated so an ffmpeg stderr
// dump cannot blow up the row.
func (s *TaskStore) MarkFailed(ctx context.Context, id, reason string) error {
	if len(reason) > 2000 {
		reason = reason[:2000]
	}
	_, err := s.db.Exec(ctx, `
		UPDATE tasks SET status=$2, error_text=$3, finished_at=$4 WHERE id=$1
	`, id, models.TaskFailed, reason, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "tasks.failed", "db update failed")
	}
	return nil
}
