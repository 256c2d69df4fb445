package worker

import (
	"context"
	"sync"
	"time"

	"shortforge/internal/ai"
	"shortforge/internal/ingest"
	"shortforge/internal/media/probe"
	"shortforge/internal/media/render"
	"shortforge/internal/media/source"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/progress"
	"shortforge/internal/store"
	"shortforge/internal/worker/pipeline"
	"shortforge/internal/worker/queue"
)

// Run starts Cfg.WorkerConcurrency consumer goroutines against the task
// queue and blocks until the context is canceled and every in-flight task
// has finished. Render parallelism is bounded separately by the encoder's
// slot count, so a large pool cannot oversubscribe ffmpeg.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	q := queue.NewRedisQueue(d.RDB, d.Cfg.QueueKey)
	prober := probe.New(d.Cfg.FFprobeBin)

	p := pipeline.New(pipeline.Deps{
		Cfg:        d.Cfg,
		Videos:     store.NewVideoStore(d.Pool),
		Shorts:     store.NewShortStore(d.Pool),
		Projects:   store.NewProjectStore(d.Pool),
		Tasks:      store.NewTaskStore(d.Pool),
		Progress:   progress.NewStore(d.RDB, d.Cfg.ProgressTTL),
		Opener:     source.NewOpener(prober),
		Prober:     prober,
		Encoder:    render.NewEncoder(d.Cfg.FFmpegBin, d.Cfg.RenderSlots, log),
		Suggester:  ai.NewSuggester(d.Cfg.GeminiAPIKey, d.Cfg.GeminiModel, log),
		Downloader: ingest.NewDownloader(d.Cfg.MediaRoot, log),
		Log:        log,
	})

	n := d.Cfg.WorkerConcurrency
	if n < 1 {
		n = 1
	}
	log.Info("worker pool starting", "concurrency", n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			consume(ctx, q, p, &logger.Logger{Logger: log.Logger.With("consumer", id)})
		}(i)
	}
	wg.Wait()

	log.Info("worker pool stopped")
	return ctx.Err()
}

// consume pops task ids off the queue until the context is canceled.
func consume(ctx context.Context, q *queue.RedisQueue, p *pipeline.Pipeline, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Bound each blocking pop so shutdown is never stuck behind BRPOP.
		popCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		taskID, err := q.Pop(popCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("queue pop error, retrying", "error", err.Error())
			time.Sleep(1 * time.Second)
			continue
		}
		if taskID == "" {
			continue
		}

		taskCtx := logger.ContextWithTaskID(ctx, taskID)
		taskLog := log.WithTaskID(taskID)

		taskLog.Info("processing task")
		start := time.Now()
		if err := p.ProcessTask(taskCtx, taskID); err != nil {
			taskLog.Error("task failed",
				"error", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		} else {
			taskLog.Info("task completed",
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
	}
}
