package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shortforge/internal/httpkit"
	"shortforge/internal/models"
	"shortforge/internal/progress"
	"shortforge/internal/worker/util"
)

// enqueueTask persists a task row, pushes its id onto the queue and
// responds 202 with the id to poll. The row is written first so a worker
// can never pop an id it cannot load.
func (h *Handler) enqueueTask(ctx context.Context, w http.ResponseWriter, kind string, params map[string]any) {
	task := &models.Task{
		ID:     util.NewID("task"),
		Kind:   kind,
		Params: params,
	}
	if err := h.tasks.Create(ctx, task); err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	// The pending record must exist before a worker can pop the id.
	_ = h.progress.Pending(ctx, task.ID)
	if err := h.queue.Push(ctx, task.ID); err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "queue push failed", nil)
		return
	}

	httpkit.WriteJSON(w, 202, map[string]any{
		"task": map[string]any{
			"id":     task.ID,
			"kind":   kind,
			"status": models.TaskQueued,
		},
	})
}

// GetTask reports live progress. The progress record is authoritative
// while it exists; after its TTL the task row still answers with the
// terminal status.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "taskId")

	rec, err := h.progress.Get(ctx, taskID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	body := map[string]any{
		"task_id":  taskID,
		"status":   rec.Status,
		"progress": rec.Progress,
	}
	if rec.Message != "" {
		body["message"] = rec.Message
	}
	if rec.Result != nil {
		body["result"] = rec.Result
	}

	// A pending record may just mean the progress entry expired; fall back
	// to the task row for history.
	if rec.Status == progress.StatusPending {
		if task, err := h.tasks.Get(ctx, taskID); err == nil {
			body["kind"] = task.Kind
			body["created_at"] = task.CreatedAt.UTC().Format(time.RFC3339)
			switch task.Status {
			case models.TaskDone:
				body["status"] = "complete"
				body["progress"] = 100
			case models.TaskFailed:
				body["status"] = "error"
				if task.ErrorText != "" {
					body["message"] = task.ErrorText
				}
			case models.TaskRunning:
				body["status"] = "processing"
			}
		}
	}

	httpkit.WriteJSON(w, 200, body)
}
