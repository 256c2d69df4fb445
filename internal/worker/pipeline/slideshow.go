package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shortforge/internal/media/overlay"
	"shortforge/internal/media/render"
	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/timecode"
)

// runSlideshow renders a slideshow project. Individual bad elements
// (missing images, broken overlays) are skipped and reported in the final
// message; the render fails outright only when nothing usable remains.
func (p *Pipeline) runSlideshow(ctx context.Context, task *models.Task, log *logger.Logger) error {
	projectID, err := stringParam(task, "project_id")
	if err != nil {
		return err
	}

	project, err := p.d.Projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if err := p.d.Projects.SetStatus(ctx, projectID, models.ProjectRendering, ""); err != nil {
		log.Warn("failed to mark project rendering", "error", err.Error())
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 10, "composing slides")

	slides := make([]models.Slide, len(project.Slides))
	copy(slides, project.Slides)
	sort.SliceStable(slides, func(i, j int) bool { return slides[i].Order < slides[j].Order })

	var notes []string
	var usable []render.Slide
	var elapsed float64
	var captionFilters []string
	for _, sl := range slides {
		imgPath := filepath.Join(p.d.Cfg.MediaRoot, filepath.FromSlash(sl.ImagePath))
		if _, err := os.Stat(imgPath); err != nil {
			log.Warn("slide image missing, skipping", "path", sl.ImagePath)
			notes = append(notes, fmt.Sprintf("slide %q skipped: image not found", sl.ImagePath))
			continue
		}
		dur := sl.Duration
		if dur <= 0 {
			dur = 3
		}
		if sl.Caption != "" {
			filter, err := overlay.Drawtext(models.TextOverlay{
				Text:     sl.Caption,
				Start:    timecode.Format(int(elapsed)),
				End:      timecode.Format(int(elapsed + dur)),
				Position: "bottom",
			}, slideshowWidth, p.d.Cfg.FontFile, log)
			if err != nil {
				log.Warn("slide caption skipped", "error", err.Error())
				notes = append(notes, fmt.Sprintf("caption %q skipped: %s", sl.Caption, err.Error()))
			} else {
				captionFilters = append(captionFilters, filter)
			}
		}
		usable = append(usable, render.Slide{Path: imgPath, Duration: dur})
		elapsed += dur
	}
	if len(usable) == 0 {
		failErr := errors.NoRenderableContent("slideshow has no usable slides")
		if err := p.d.Projects.SetStatus(ctx, projectID, models.ProjectFailed, failErr.Error()); err != nil {
			log.Warn("failed to mark project failed", "error", err.Error())
		}
		return failErr
	}

	overlayFilters := captionFilters
	for _, ov := range project.Overlays {
		filter, err := overlay.Drawtext(ov, slideshowWidth, p.d.Cfg.FontFile, log)
		if err != nil {
			log.Warn("overlay skipped", "error", err.Error())
			notes = append(notes, fmt.Sprintf("overlay %q skipped: %s", ov.Text, err.Error()))
			continue
		}
		overlayFilters = append(overlayFilters, filter)
	}

	audioPath := ""
	if project.AudioPath != "" {
		audioPath = filepath.Join(p.d.Cfg.MediaRoot, filepath.FromSlash(project.AudioPath))
		if _, err := os.Stat(audioPath); err != nil {
			log.Warn("audio track missing, rendering silent", "path", project.AudioPath)
			notes = append(notes, "audio track missing, rendered without sound")
			audioPath = ""
		}
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 50, "encoding slideshow")
	spec := render.SlideshowSpec{
		Slides:         usable,
		OverlayFilters: overlayFilters,
		AudioPath:      audioPath,
		Width:          slideshowWidth,
		Height:         slideshowHeight,
	}
	outDir := filepath.Join(p.d.Cfg.MediaRoot, "slideshows")
	art, err := p.d.Encoder.Slideshow(ctx, spec, outDir)
	if err != nil {
		if sErr := p.d.Projects.SetStatus(ctx, projectID, models.ProjectFailed, err.Error()); sErr != nil {
			log.Warn("failed to mark project failed", "error", sErr.Error())
		}
		return err
	}

	_ = p.d.Progress.Processing(ctx, task.ID, 90, "saving artifacts")
	message := "slideshow ready"
	if len(notes) > 0 {
		message += " (" + strings.Join(notes, "; ") + ")"
	}
	if err := p.d.Projects.SetArtifacts(ctx, projectID, p.publicPath(art.VideoPath), p.publicPath(art.ThumbnailPath), message); err != nil {
		return err
	}

	return p.d.Progress.Complete(ctx, task.ID, map[string]any{
		"project_id":     projectID,
		"video_path":     p.publicPath(art.VideoPath),
		"thumbnail_path": p.publicPath(art.ThumbnailPath),
		"duration":       art.Duration,
		"skipped":        len(notes),
	}, message)
}

const (
	slideshowWidth  = 1080
	slideshowHeight = 1920
)
