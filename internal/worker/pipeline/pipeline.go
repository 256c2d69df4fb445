// Package pipeline executes queued tasks: source ingestion, short
// cutting, subtitle burn-in and slideshow renders.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"shortforge/internal/ai"
	"shortforge/internal/config"
	"shortforge/internal/ingest"
	"shortforge/internal/media/probe"
	"shortforge/internal/media/render"
	"shortforge/internal/media/source"
	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
)

// The runner dependencies are interfaces covering exactly the calls the
// task runners make, so each runner can be exercised against fakes.

type VideoStore interface {
	Get(ctx context.Context, videoID string) (*models.Video, error)
	Upsert(ctx context.Context, v *models.Video) error
}

type ShortStore interface {
	Get(ctx context.Context, id string) (*models.Short, error)
	Create(ctx context.Context, sh *models.Short) error
	SwapVideoPath(ctx context.Context, id, newVideoPath, newThumbnailPath string) (string, string, error)
}

type ProjectStore interface {
	Get(ctx context.Context, id string) (*models.Project, error)
	SetStatus(ctx context.Context, id, status, message string) error
	SetArtifacts(ctx context.Context, id, videoPath, thumbnailPath, message string) error
}

type TaskStore interface {
	Get(ctx context.Context, id string) (*models.Task, error)
	MarkRunning(ctx context.Context, id string) error
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type ProgressSink interface {
	Processing(ctx context.Context, taskID string, pct int, msg string) error
	Complete(ctx context.Context, taskID string, result map[string]any, msg string) error
	Fail(ctx context.Context, taskID string, msg string) error
}

type SourceOpener interface {
	Open(ctx context.Context, path string, start, end float64) (*source.Clip, error)
}

type MediaProber interface {
	Probe(ctx context.Context, path string) (probe.Info, error)
	Duration(ctx context.Context, path string) (float64, error)
}

type MediaEncoder interface {
	CutShort(ctx context.Context, clip *source.Clip, videoFilter, outDir string) (render.Artifact, error)
	Reencode(ctx context.Context, inputPath, videoFilter, outDir string, hasAudio bool, duration float64) (render.Artifact, error)
	Slideshow(ctx context.Context, spec render.SlideshowSpec, outDir string) (render.Artifact, error)
	Thumbnail(ctx context.Context, videoPath string, at float64, outDir, name string) (string, error)
}

type Suggester interface {
	SuggestClips(ctx context.Context, transcript string, durationSeconds float64) []models.ClipRange
	SuggestSocialCopy(ctx context.Context, title, description string) *ai.SocialCopy
}

type Downloader interface {
	Download(ctx context.Context, urlOrID string) (*ingest.Result, error)
}

// Deps wires the pipeline to its collaborators.
type Deps struct {
	Cfg        *config.Config
	Videos     VideoStore
	Shorts     ShortStore
	Projects   ProjectStore
	Tasks      TaskStore
	Progress   ProgressSink
	Opener     SourceOpener
	Prober     MediaProber
	Encoder    MediaEncoder
	Suggester  Suggester
	Downloader Downloader
	Log        *logger.Logger
}

type Pipeline struct {
	d   Deps
	log *logger.Logger
}

func New(d Deps) *Pipeline {
	return &Pipeline{d: d, log: d.Log.WithComponent("pipeline")}
}

// ProcessTask loads the task row and dispatches on its kind. Whole-task
// failures end up in both the task row and the progress record; they are
// never returned as panics or silent drops.
func (p *Pipeline) ProcessTask(ctx context.Context, taskID string) error {
	log := p.log.WithTaskID(taskID)

	task, err := p.d.Tasks.Get(ctx, taskID)
	if err != nil {
		log.Error("unknown task id popped from queue", "error", err.Error())
		return err
	}

	if err := p.d.Tasks.MarkRunning(ctx, taskID); err != nil {
		log.Warn("failed to mark task running", "error", err.Error())
	}
	_ = p.d.Progress.Processing(ctx, taskID, 0, "task started")

	switch task.Kind {
	case models.TaskIngest:
		err = p.runIngest(ctx, task, log)
	case models.TaskShort:
		err = p.runShort(ctx, task, log)
	case models.TaskSubtitles:
		err = p.runSubtitles(ctx, task, log)
	case models.TaskSlideshow:
		err = p.runSlideshow(ctx, task, log)
	default:
		err = errors.Newf(errors.CodeValidation, "unknown task kind %q", task.Kind)
	}

	if err != nil {
		p.failTask(ctx, taskID, err, log)
		return err
	}

	if err := p.d.Tasks.MarkDone(ctx, taskID); err != nil {
		log.Warn("failed to mark task done", "error", err.Error())
	}
	return nil
}

// failTask records the failure in the task row and finalizes the progress
// record with a human-readable message.
func (p *Pipeline) failTask(ctx context.Context, taskID string, err error, log *logger.Logger) {
	log.Error("task failed", "error", err.Error())

	msg := err.Error()
	var e *errors.Error
	if errors.As(err, &e) {
		msg = fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}

	if dbErr := p.d.Tasks.MarkFailed(ctx, taskID, msg); dbErr != nil {
		log.Warn("failed to persist task failure", "error", dbErr.Error())
	}
	_ = p.d.Progress.Fail(ctx, taskID, msg)
}

// publicPath converts an absolute artifact path into the /media/-relative
// form stored in records and returned to clients.
func (p *Pipeline) publicPath(abs string) string {
	rel, err := filepath.Rel(p.d.Cfg.MediaRoot, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// stringParam reads a required string out of the task params.
func stringParam(task *models.Task, key string) (string, error) {
	v, ok := task.Params[key].(string)
	if !ok || v == "" {
		return "", errors.ValidationField("params."+key, key+" is required")
	}
	return v, nil
}

// floatParam reads a numeric param; JSON numbers decode as float64.
func floatParam(task *models.Task, key string) (float64, error) {
	v, ok := task.Params[key].(float64)
	if !ok {
		return 0, errors.ValidationField("params."+key, key+" is required")
	}
	return v, nil
}
