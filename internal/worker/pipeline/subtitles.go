package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"shortforge/internal/media/overlay"
	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/worker/util"
)

// runSubtitles burns the source captions into an already rendered short.
// The burn produces a fresh artifact; the old files are removed only after
// the record points at the new ones.
func (p *Pipeline) runSubtitles(ctx context.Context, task *models.Task, log *logger.Logger) error {
	shortID, err := stringParam(task, "short_id")
	if err != nil {
		return err
	}

	short, err := p.d.Shorts.Get(ctx, shortID)
	if err != nil {
		return err
	}
	video, err := p.d.Videos.Get(ctx, short.VideoID)
	if err != nil {
		return err
	}

	cues := util.WindowCues(video.Cues, short.StartSeconds, short.EndSeconds)
	if len(cues) == 0 {
		return errors.NoRenderableContent("no captions cover this clip")
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 20, "writing subtitle track")
	srtDir := filepath.Join(p.d.Cfg.MediaRoot, "tmp")
	if err := os.MkdirAll(srtDir, 0o755); err != nil {
		return errors.Wrap(err, "pipeline.subtitles", "create tmp dir")
	}
	srtPath := filepath.Join(srtDir, shortID+".srt")
	n, err := overlay.WriteSRT(cues, srtPath)
	if err != nil {
		return err
	}
	defer os.Remove(srtPath)
	log.Info("subtitle track written", "cues", n, "path", srtPath)

	inputPath := filepath.Join(p.d.Cfg.MediaRoot, filepath.FromSlash(short.VideoPath))
	info, err := p.d.Prober.Probe(ctx, inputPath)
	if err != nil {
		return err
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 50, "burning subtitles")
	filter := overlay.BurnFilter(srtPath, overlay.DefaultSubtitleStyle())
	outDir := filepath.Join(p.d.Cfg.MediaRoot, "shorts")
	art, err := p.d.Encoder.Reencode(ctx, inputPath, filter, outDir, info.HasAudio, info.Duration)
	if err != nil {
		return err
	}

	oldVideo, oldThumb, err := p.d.Shorts.SwapVideoPath(ctx, shortID, p.publicPath(art.VideoPath), p.publicPath(art.ThumbnailPath))
	if err != nil {
		_ = os.Remove(art.VideoPath)
		_ = os.Remove(art.ThumbnailPath)
		return err
	}
	if oldVideo != "" && oldVideo != p.publicPath(art.VideoPath) {
		_ = os.Remove(filepath.Join(p.d.Cfg.MediaRoot, filepath.FromSlash(oldVideo)))
	}
	if oldThumb != "" && oldThumb != p.publicPath(art.ThumbnailPath) {
		_ = os.Remove(filepath.Join(p.d.Cfg.MediaRoot, filepath.FromSlash(oldThumb)))
	}

	return p.d.Progress.Complete(ctx, task.ID, map[string]any{
		"short_id":       shortID,
		"video_path":     p.publicPath(art.VideoPath),
		"thumbnail_path": p.publicPath(art.ThumbnailPath),
		"cues":           n,
	}, "subtitles burned in")
}
