package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"shortforge/internal/media/probe"
	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
)

func subtitlesTask() *models.Task {
	return &models.Task{
		ID:     "task_1",
		Kind:   models.TaskSubtitles,
		Params: map[string]any{"short_id": "sht_1"},
	}
}

func subtitlesFixture(t *testing.T, cues []models.Cue) (*Pipeline, *fakeShorts, string, string) {
	t.Helper()
	cfg := testConfig(t)
	oldVideo := writeMediaFile(t, cfg, "shorts/old.mp4")
	oldThumb := writeMediaFile(t, cfg, "shorts/old.jpg")

	shorts := &fakeShorts{short: &models.Short{
		ID:            "sht_1",
		VideoID:       "vid_1",
		VideoPath:     "shorts/old.mp4",
		ThumbnailPath: "shorts/old.jpg",
		StartSeconds:  10,
		EndSeconds:    14,
	}}
	videos := &fakeVideos{video: &models.Video{VideoID: "vid_1", Cues: cues}}
	p := New(Deps{
		Cfg:      cfg,
		Videos:   videos,
		Shorts:   shorts,
		Progress: &fakeProgress{},
		Prober:   &fakeProber{info: probe.Info{Duration: 4, HasAudio: true}},
		Encoder:  &fakeEncoder{},
		Log:      testLogger(),
	})
	return p, shorts, oldVideo, oldThumb
}

func TestRunSubtitlesSwapsAndCleansUp(t *testing.T) {
	p, shorts, oldVideo, oldThumb := subtitlesFixture(t, []models.Cue{
		{Text: "hello", Start: 11, End: 13},
	})

	if err := p.runSubtitles(context.Background(), subtitlesTask(), p.log); err != nil {
		t.Fatalf("runSubtitles() error = %v", err)
	}

	if shorts.newVideo != "shorts/burned.mp4" {
		t.Errorf("swapped video path = %q, want shorts/burned.mp4", shorts.newVideo)
	}
	if shorts.newThumb != "shorts/burned.jpg" {
		t.Errorf("swapped thumbnail path = %q, want shorts/burned.jpg", shorts.newThumb)
	}

	// Replaced artifacts are removed only after the row swap; both old
	// files must be gone, both new ones present.
	for _, old := range []string{oldVideo, oldThumb} {
		if fileExists(old) {
			t.Errorf("old artifact %q still on disk after swap", old)
		}
	}
	newVideo := filepath.Join(p.d.Cfg.MediaRoot, "shorts", "burned.mp4")
	if !fileExists(newVideo) {
		t.Errorf("new artifact %q missing", newVideo)
	}
}

func TestRunSubtitlesKeepsOriginalOnSwapFailure(t *testing.T) {
	p, shorts, oldVideo, oldThumb := subtitlesFixture(t, []models.Cue{
		{Text: "hello", Start: 11, End: 13},
	})
	shorts.swapErr = errors.NotFound("short", "sht_1")

	if err := p.runSubtitles(context.Background(), subtitlesTask(), p.log); err == nil {
		t.Fatal("runSubtitles() succeeded despite swap failure")
	}

	// The original stays addressable and the orphaned new files are
	// cleaned up.
	for _, old := range []string{oldVideo, oldThumb} {
		if !fileExists(old) {
			t.Errorf("original artifact %q was removed on a failed swap", old)
		}
	}
	for _, name := range []string{"burned.mp4", "burned.jpg"} {
		orphan := filepath.Join(p.d.Cfg.MediaRoot, "shorts", name)
		if fileExists(orphan) {
			t.Errorf("orphaned artifact %q left on disk", orphan)
		}
	}
}

func TestRunSubtitlesNoCoveringCues(t *testing.T) {
	p, _, oldVideo, _ := subtitlesFixture(t, []models.Cue{
		{Text: "before the clip", Start: 2, End: 5},
	})

	err := p.runSubtitles(context.Background(), subtitlesTask(), p.log)
	if !errors.IsCode(err, errors.CodeNoRenderableContent) {
		t.Fatalf("runSubtitles() error = %v, want NO_RENDERABLE_CONTENT", err)
	}
	if !fileExists(oldVideo) {
		t.Error("original artifact removed despite failed burn-in")
	}
}
