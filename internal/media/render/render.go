// Package render drives ffmpeg to encode composed clips and slideshows
// and to extract thumbnails.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shortforge/internal/media/source"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
)

// SlideshowFPS is the fixed frame rate for the slideshow path. Shorts keep
// their source frame rate.
const SlideshowFPS = 24

// Artifact is the pair of files one render produces, with paths relative
// to the media root.
type Artifact struct {
	VideoPath     string
	ThumbnailPath string
	Duration      float64
}

// Encoder runs ffmpeg with a process-wide concurrency bound so parallel
// tasks cannot oversubscribe the host.
type Encoder struct {
	bin string
	sem chan struct{}
	log *logger.Logger
}

func NewEncoder(ffmpegBin string, slots int, log *logger.Logger) *Encoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if slots < 1 {
		slots = 1
	}
	return &Encoder{
		bin: ffmpegBin,
		sem: make(chan struct{}, slots),
		log: log.WithComponent("render"),
	}
}

func (e *Encoder) acquire(ctx context.Context) error {
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Encoder) release() {
	<-e.sem
}

// run executes ffmpeg and removes the partial output on any failure so a
// half-written file is never registered as a result.
func (e *Encoder) run(ctx context.Context, outPath string, args []string) error {
	if err := e.acquire(ctx); err != nil {
		return errors.Wrap(err, "render", "waiting for encode slot")
	}
	defer e.release()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.bin, args...)
	cmd.Stderr = &stderr

	e.log.Debug("ffmpeg start", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		_ = os.Remove(outPath)
		e.log.Error("ffmpeg failed", "error", err.Error(), "stderr", tail(stderr.String(), 800))
		return errors.EncodeFailure(fmt.Errorf("%v: %s", err, tail(stderr.String(), 300)), "render.ffmpeg")
	}
	return nil
}

// CutShort encodes the clip window with an optional reframing/overlay
// filter chain. The audio codec is omitted entirely when the source has no
// audio track.
func (e *Encoder) CutShort(ctx context.Context, clip *source.Clip, videoFilter string, outDir string) (Artifact, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Artifact{}, errors.Wrap(err, "render.short", "create output dir")
	}

	name := uuid.New().String()
	videoPath := filepath.Join(outDir, name+".mp4")

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", clip.Start),
		"-to", fmt.Sprintf("%.3f", clip.End),
		"-i", clip.Path,
	}
	if videoFilter != "" {
		args = append(args, "-vf", videoFilter)
	}
	args = append(args, "-c:v", "libx264", "-preset", "fast", "-pix_fmt", "yuv420p")
	if clip.HasAudio {
		args = append(args, "-c:a", "aac")
	} else {
		args = append(args, "-an")
	}
	args = append(args, videoPath)

	if err := e.run(ctx, videoPath, args); err != nil {
		return Artifact{}, err
	}

	dur := clip.Duration()
	thumbPath, err := e.Thumbnail(ctx, videoPath, ShortThumbnailTime(dur), outDir, name)
	if err != nil {
		_ = os.Remove(videoPath)
		return Artifact{}, err
	}

	return Artifact{VideoPath: videoPath, ThumbnailPath: thumbPath, Duration: dur}, nil
}

// Reencode applies a filter chain to an already rendered file, producing a
// new artifact under a fresh name. Used for subtitle burn-in where the
// original must stay addressable.
func (e *Encoder) Reencode(ctx context.Context, inputPath, videoFilter, outDir string, hasAudio bool, duration float64) (Artifact, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Artifact{}, errors.Wrap(err, "render.reencode", "create output dir")
	}

	name := uuid.New().String()
	videoPath := filepath.Join(outDir, name+".mp4")

	args := []string{"-y", "-i", inputPath}
	if videoFilter != "" {
		args = append(args, "-vf", videoFilter)
	}
	args = append(args, "-c:v", "libx264", "-preset", "fast", "-pix_fmt", "yuv420p")
	if hasAudio {
		args = append(args, "-c:a", "aac")
	} else {
		args = append(args, "-an")
	}
	args = append(args, videoPath)

	if err := e.run(ctx, videoPath, args); err != nil {
		return Artifact{}, err
	}

	thumbPath, err := e.Thumbnail(ctx, videoPath, ShortThumbnailTime(duration), outDir, name)
	if err != nil {
		_ = os.Remove(videoPath)
		return Artifact{}, err
	}

	return Artifact{VideoPath: videoPath, ThumbnailPath: thumbPath, Duration: duration}, nil
}

// Slide is one image input for the slideshow path, already validated by
// the caller.
type Slide struct {
	Path     string
	Duration float64
}

// SlideshowSpec is a fully composed slideshow ready to encode.
type SlideshowSpec struct {
	Slides []Slide
	// OverlayFilters are drawtext filters applied over the concatenated
	// video, in order.
	OverlayFilters []string
	// AudioPath, when set, is looped or truncated to the output duration.
	AudioPath string
	Width     int
	Height    int
}

// TotalDuration sums the slide durations.
func (s SlideshowSpec) TotalDuration() float64 {
	var d float64
	for _, sl := range s.Slides {
		d += sl.Duration
	}
	return d
}

// Slideshow encodes the image sequence at a fixed 24 fps, loops or
// truncates the background audio to the output duration, and extracts an
// early thumbnail frame.
func (e *Encoder) Slideshow(ctx context.Context, spec SlideshowSpec, outDir string) (Artifact, error) {
	if len(spec.Slides) == 0 {
		return Artifact{}, errors.NoRenderableContent("slideshow has no usable slides")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Artifact{}, errors.Wrap(err, "render.slideshow", "create output dir")
	}

	w, h := spec.Width, spec.Height
	if w <= 0 || h <= 0 {
		w, h = 1080, 1920
	}

	name := uuid.New().String()
	videoPath := filepath.Join(outDir, name+".mp4")
	total := spec.TotalDuration()

	args := []string{"-y"}
	for _, sl := range spec.Slides {
		args = append(args, "-loop", "1", "-t", fmt.Sprintf("%.3f", sl.Duration), "-i", sl.Path)
	}
	audioIndex := -1
	if spec.AudioPath != "" {
		audioIndex = len(spec.Slides)
		// Loop indefinitely; -t below truncates to the output duration.
		args = append(args, "-stream_loop", "-1", "-i", spec.AudioPath)
	}

	args = append(args, "-filter_complex", slideshowFilter(len(spec.Slides), w, h, spec.OverlayFilters))
	args = append(args, "-map", "[vout]")
	if audioIndex >= 0 {
		args = append(args,
			"-map", fmt.Sprintf("%d:a", audioIndex),
			"-c:a", "aac",
		)
	}
	args = append(args,
		"-t", fmt.Sprintf("%.3f", total),
		"-r", fmt.Sprintf("%d", SlideshowFPS),
		"-c:v", "libx264", "-preset", "fast", "-pix_fmt", "yuv420p",
		videoPath,
	)

	if err := e.run(ctx, videoPath, args); err != nil {
		return Artifact{}, err
	}

	thumbPath, err := e.Thumbnail(ctx, videoPath, SlideshowThumbnailTime(total), outDir, name)
	if err != nil {
		_ = os.Remove(videoPath)
		return Artifact{}, err
	}

	return Artifact{VideoPath: videoPath, ThumbnailPath: thumbPath, Duration: total}, nil
}

// slideshowFilter scales each input onto the canvas, concatenates them,
// then applies the overlay filters to the joined stream.
func slideshowFilter(slides, w, h int, overlays []string) string {
	var b strings.Builder
	for i := 0; i < slides; i++ {
		fmt.Fprintf(&b,
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,setsar=1[s%d];",
			i, w, h, w, h, i)
	}
	for i := 0; i < slides; i++ {
		fmt.Fprintf(&b, "[s%d]", i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=0[v]", slides)

	if len(overlays) == 0 {
		b.WriteString(";[v]null[vout]")
		return b.String()
	}
	fmt.Fprintf(&b, ";[v]%s[vout]", strings.Join(overlays, ","))
	return b.String()
}

// Thumbnail extracts a single frame at the given offset next to the video.
func (e *Encoder) Thumbnail(ctx context.Context, videoPath string, at float64, outDir, name string) (string, error) {
	thumbPath := filepath.Join(outDir, name+".jpg")

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", at),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "3",
		thumbPath,
	}
	if err := e.run(ctx, thumbPath, args); err != nil {
		return "", err
	}
	return thumbPath, nil
}

// ShortThumbnailTime is the temporal midpoint of the clip.
func ShortThumbnailTime(duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return duration / 2
}

// SlideshowThumbnailTime is min(1s, duration/2), biased to an early frame
// so a title slide shows up in listings.
func SlideshowThumbnailTime(duration float64) float64 {
	half := duration / 2
	if half < 0 {
		return 0
	}
	if half < 1 {
		return half
	}
	return 1
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
