package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"shortforge/internal/config"
	"shortforge/internal/media/probe"
	"shortforge/internal/media/render"
	"shortforge/internal/media/source"
	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json", Output: &bytes.Buffer{}})
}

type fakeVideos struct {
	video    *models.Video
	upserted *models.Video
}

func (f *fakeVideos) Get(_ context.Context, id string) (*models.Video, error) {
	if f.video == nil || f.video.VideoID != id {
		return nil, errors.NotFound("video", id)
	}
	return f.video, nil
}

func (f *fakeVideos) Upsert(_ context.Context, v *models.Video) error {
	f.upserted = v
	return nil
}

type fakeShorts struct {
	short    *models.Short
	created  *models.Short
	swapErr  error
	newVideo string
	newThumb string
}

func (f *fakeShorts) Get(_ context.Context, id string) (*models.Short, error) {
	if f.short == nil || f.short.ID != id {
		return nil, errors.NotFound("short", id)
	}
	cp := *f.short
	return &cp, nil
}

func (f *fakeShorts) Create(_ context.Context, sh *models.Short) error {
	f.created = sh
	return nil
}

func (f *fakeShorts) SwapVideoPath(_ context.Context, id, newVideoPath, newThumbnailPath string) (string, string, error) {
	if f.swapErr != nil {
		return "", "", f.swapErr
	}
	oldVideo, oldThumb := f.short.VideoPath, f.short.ThumbnailPath
	f.newVideo, f.newThumb = newVideoPath, newThumbnailPath
	f.short.VideoPath, f.short.ThumbnailPath = newVideoPath, newThumbnailPath
	return oldVideo, oldThumb, nil
}

type fakeProjects struct {
	project       *models.Project
	statuses      []string
	statusMessage string
	artVideo      string
	artThumb      string
	artMessage    string
}

func (f *fakeProjects) Get(_ context.Context, id string) (*models.Project, error) {
	if f.project == nil || f.project.ID != id {
		return nil, errors.NotFound("project", id)
	}
	cp := *f.project
	return &cp, nil
}

func (f *fakeProjects) SetStatus(_ context.Context, _, status, message string) error {
	f.statuses = append(f.statuses, status)
	f.statusMessage = message
	return nil
}

func (f *fakeProjects) SetArtifacts(_ context.Context, _, videoPath, thumbnailPath, message string) error {
	f.statuses = append(f.statuses, models.ProjectReady)
	f.artVideo = videoPath
	f.artThumb = thumbnailPath
	f.artMessage = message
	return nil
}

type fakeProgress struct {
	percents []int
	complete bool
	failed   bool
	message  string
	result   map[string]any
}

func (f *fakeProgress) Processing(_ context.Context, _ string, pct int, _ string) error {
	f.percents = append(f.percents, pct)
	return nil
}

func (f *fakeProgress) Complete(_ context.Context, _ string, result map[string]any, msg string) error {
	f.complete = true
	f.result = result
	f.message = msg
	return nil
}

func (f *fakeProgress) Fail(_ context.Context, _ string, msg string) error {
	f.failed = true
	f.message = msg
	return nil
}

// fakeEncoder writes real output files so path bookkeeping around swaps
// and cleanup can be asserted against the filesystem.
type fakeEncoder struct {
	slideshowSpec *render.SlideshowSpec
	encodeErr     error
}

func (f *fakeEncoder) writeArtifact(outDir, name string) (render.Artifact, error) {
	if f.encodeErr != nil {
		return render.Artifact{}, f.encodeErr
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return render.Artifact{}, err
	}
	videoPath := filepath.Join(outDir, name+".mp4")
	thumbPath := filepath.Join(outDir, name+".jpg")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		return render.Artifact{}, err
	}
	if err := os.WriteFile(thumbPath, []byte("thumb"), 0o644); err != nil {
		return render.Artifact{}, err
	}
	return render.Artifact{VideoPath: videoPath, ThumbnailPath: thumbPath, Duration: 5}, nil
}

func (f *fakeEncoder) CutShort(_ context.Context, clip *source.Clip, _ string, outDir string) (render.Artifact, error) {
	art, err := f.writeArtifact(outDir, "cut")
	art.Duration = clip.Duration()
	return art, err
}

func (f *fakeEncoder) Reencode(_ context.Context, _, _, outDir string, _ bool, duration float64) (render.Artifact, error) {
	art, err := f.writeArtifact(outDir, "burned")
	art.Duration = duration
	return art, err
}

func (f *fakeEncoder) Slideshow(_ context.Context, spec render.SlideshowSpec, outDir string) (render.Artifact, error) {
	f.slideshowSpec = &spec
	return f.writeArtifact(outDir, "slideshow")
}

func (f *fakeEncoder) Thumbnail(_ context.Context, _ string, _ float64, outDir, name string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(outDir, name+".jpg")
	return p, os.WriteFile(p, []byte("thumb"), 0o644)
}

type fakeProber struct {
	info probe.Info
}

func (f *fakeProber) Probe(_ context.Context, _ string) (probe.Info, error) {
	return f.info, nil
}

func (f *fakeProber) Duration(_ context.Context, _ string) (float64, error) {
	return f.info.Duration, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{MediaRoot: t.TempDir()}
}

func writeMediaFile(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	abs := filepath.Join(cfg.MediaRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	return abs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
