package models

import "time"

// Task kinds pushed onto the queue.
const (
	TaskIngest    = "ingest"
	TaskShort     = "short"
	TaskSubtitles = "subtitles"
	TaskSlideshow = "slideshow"
)

// Task statuses as persisted in the tasks table. The ProgressRecord a
// poller sees is derived from Redis, not from these rows.
const (
	TaskQueued  = "QUEUED"
	TaskRunning = "RUNNING"
	TaskDone    = "DONE"
	TaskFailed  = "FAILED"
)

// Task is the durable record behind one queued unit of work.
type Task struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Status     string         `json:"status"`
	Params     map[string]any `json:"params,omitempty"`
	ErrorText  string         `json:"error_text,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}
