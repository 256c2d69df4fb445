package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"shortforge/internal/models"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/worker/util"
)

// runIngest downloads a source video, fetches captions, asks the model for
// clip suggestions and upserts the video record.
func (p *Pipeline) runIngest(ctx context.Context, task *models.Task, log *logger.Logger) error {
	url, err := stringParam(task, "url")
	if err != nil {
		return err
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 10, "downloading source")
	res, err := p.d.Downloader.Download(ctx, url)
	if err != nil {
		return err
	}
	log.Info("source downloaded", "video_id", res.VideoID, "duration", res.Duration, "cues", len(res.Cues))

	// The container sometimes reports a different duration than the
	// metadata; trust the file.
	if dur, err := p.d.Prober.Duration(ctx, res.FilePath); err == nil && dur > 0 {
		res.Duration = dur
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 60, "extracting thumbnail")
	thumbDir := filepath.Join(p.d.Cfg.MediaRoot, "thumbnails")
	thumb, err := p.d.Encoder.Thumbnail(ctx, res.FilePath, 1.0, thumbDir, res.VideoID)
	if err != nil {
		// A missing thumbnail does not invalidate the download.
		log.Warn("thumbnail extraction failed", "error", err.Error())
		thumb = ""
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 80, "suggesting clips")
	suggestions := p.d.Suggester.SuggestClips(ctx, util.JoinCues(res.Cues), res.Duration)
	log.Info("clip suggestions", "count", len(suggestions))

	video := &models.Video{
		VideoID:     res.VideoID,
		Title:       res.Title,
		Duration:    res.Duration,
		FilePath:    p.publicPath(res.FilePath),
		Suggestions: suggestions,
		Cues:        res.Cues,
	}
	if thumb != "" {
		video.ThumbnailPath = p.publicPath(thumb)
	}
	if err := p.d.Videos.Upsert(ctx, video); err != nil {
		return err
	}

	msg := "source ready"
	if len(res.Cues) == 0 {
		msg += " (no captions available)"
	}
	return p.d.Progress.Complete(ctx, task.ID, map[string]any{
		"video_id":       video.VideoID,
		"title":          video.Title,
		"duration":       video.Duration,
		"thumbnail_path": video.ThumbnailPath,
		"suggestions":    len(suggestions),
	}, strings.TrimSpace(msg))
}
