package pipeline

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"shortforge/internal/media/compose"
	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
)

// runShort cuts a clip out of an ingested source, reframes it for the
// requested aspect ratio, encodes it and enriches it with social copy.
func (p *Pipeline) runShort(ctx context.Context, task *models.Task, log *logger.Logger) error {
	videoID, err := stringParam(task, "video_id")
	if err != nil {
		return err
	}
	start, err := floatParam(task, "start")
	if err != nil {
		return err
	}
	end, err := floatParam(task, "end")
	if err != nil {
		return err
	}
	ratioText, err := stringParam(task, "aspect_ratio")
	if err != nil {
		return err
	}
	ratio := models.AspectRatio(ratioText)
	if !ratio.Valid() {
		return errors.ValidationField("params.aspect_ratio", "unknown aspect ratio "+ratioText)
	}

	video, err := p.d.Videos.Get(ctx, videoID)
	if err != nil {
		return err
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 10, "opening source")
	srcPath := filepath.Join(p.d.Cfg.MediaRoot, filepath.FromSlash(video.FilePath))
	clip, err := p.d.Opener.Open(ctx, srcPath, start, end)
	if err != nil {
		return err
	}

	filter, err := compose.VideoFilter(ratio, clip.Width, clip.Height)
	if err != nil {
		return err
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 30, "encoding clip")
	outDir := filepath.Join(p.d.Cfg.MediaRoot, "shorts")
	art, err := p.d.Encoder.CutShort(ctx, clip, filter, outDir)
	if err != nil {
		return err
	}
	log.Info("short encoded", "video", art.VideoPath, "duration", art.Duration)

	title, _ := task.Params["title"].(string)
	if title == "" {
		title = video.Title
	}
	description, _ := task.Params["description"].(string)

	short := &models.Short{
		ID:            uuid.New().String(),
		VideoID:       videoID,
		Title:         title,
		Description:   description,
		Tags:          stringSlice(task.Params["tags"]),
		VideoPath:     p.publicPath(art.VideoPath),
		ThumbnailPath: p.publicPath(art.ThumbnailPath),
		StartSeconds:  clip.Start,
		EndSeconds:    clip.End,
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 80, "generating social copy")
	if sc := p.d.Suggester.SuggestSocialCopy(ctx, title, description); sc != nil {
		short.SocialTitle = sc.Title
		short.SocialDescription = sc.Description
		short.SocialHashtags = sc.Hashtags
	}

	if err := p.d.Shorts.Create(ctx, short); err != nil {
		return err
	}

	return p.d.Progress.Complete(ctx, task.ID, map[string]any{
		"short_id":       short.ID,
		"video_path":     short.VideoPath,
		"thumbnail_path": short.ThumbnailPath,
		"duration":       art.Duration,
	}, "short ready")
}

// stringSlice coerces a decoded JSON array into strings, dropping other
// element types.
func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range arr {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
