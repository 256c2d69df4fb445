package pipeline

import (
	"context"
	"strings"
	"testing"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
)

func slideshowTask() *models.Task {
	return &models.Task{
		ID:     "task_1",
		Kind:   models.TaskSlideshow,
		Params: map[string]any{"project_id": "prj_1"},
	}
}

func TestRunSlideshowSkipsBrokenElements(t *testing.T) {
	cfg := testConfig(t)
	writeMediaFile(t, cfg, "uploads/prj_1/one.png")
	writeMediaFile(t, cfg, "uploads/prj_1/two.png")

	projects := &fakeProjects{project: &models.Project{
		ID:     "prj_1",
		Title:  "trip",
		Status: models.ProjectDraft,
		Slides: []models.Slide{
			{ImagePath: "uploads/prj_1/two.png", Duration: 2, Order: 1},
			{ImagePath: "uploads/prj_1/missing.png", Duration: 2, Order: 2},
			{ImagePath: "uploads/prj_1/one.png", Duration: 3, Order: 0},
		},
		Overlays: []models.TextOverlay{
			{Text: "hello", Start: "00:00", End: "00:02"},
			{Text: "   "},
		},
	}}
	enc := &fakeEncoder{}
	prog := &fakeProgress{}

	p := New(Deps{Cfg: cfg, Projects: projects, Progress: prog, Encoder: enc, Log: testLogger()})
	if err := p.runSlideshow(context.Background(), slideshowTask(), p.log); err != nil {
		t.Fatalf("runSlideshow() error = %v", err)
	}

	if enc.slideshowSpec == nil {
		t.Fatal("encoder was never invoked")
	}
	if got := len(enc.slideshowSpec.Slides); got != 2 {
		t.Errorf("encoded %d slides, want 2 (missing image skipped)", got)
	}
	// Order field wins over declaration order.
	if !strings.HasSuffix(enc.slideshowSpec.Slides[0].Path, "one.png") {
		t.Errorf("first slide = %q, want one.png", enc.slideshowSpec.Slides[0].Path)
	}
	if got := len(enc.slideshowSpec.OverlayFilters); got != 1 {
		t.Errorf("got %d overlay filters, want 1 (blank overlay skipped)", got)
	}

	if !prog.complete {
		t.Error("progress never reached complete")
	}
	for _, msg := range []string{projects.artMessage, prog.message} {
		if !strings.Contains(msg, "missing.png") || !strings.Contains(msg, "skipped") {
			t.Errorf("message %q does not report the skipped elements", msg)
		}
	}
	if projects.artVideo == "" || projects.artThumb == "" {
		t.Error("artifacts were not persisted")
	}
}

func TestRunSlideshowZeroUsableSlidesFails(t *testing.T) {
	cfg := testConfig(t)

	projects := &fakeProjects{project: &models.Project{
		ID:     "prj_1",
		Title:  "empty",
		Status: models.ProjectDraft,
		Slides: []models.Slide{
			{ImagePath: "uploads/prj_1/gone.png", Duration: 2, Order: 0},
		},
	}}
	enc := &fakeEncoder{}
	prog := &fakeProgress{}

	p := New(Deps{Cfg: cfg, Projects: projects, Progress: prog, Encoder: enc, Log: testLogger()})
	err := p.runSlideshow(context.Background(), slideshowTask(), p.log)
	if !errors.IsCode(err, errors.CodeNoRenderableContent) {
		t.Fatalf("runSlideshow() error = %v, want NO_RENDERABLE_CONTENT", err)
	}

	if enc.slideshowSpec != nil {
		t.Error("encoder was invoked with zero usable slides")
	}
	last := projects.statuses[len(projects.statuses)-1]
	if last != models.ProjectFailed {
		t.Errorf("final project status = %q, want %q", last, models.ProjectFailed)
	}
}

func TestRunSlideshowMissingAudioRendersSilent(t *testing.T) {
	cfg := testConfig(t)
	writeMediaFile(t, cfg, "uploads/prj_1/one.png")

	projects := &fakeProjects{project: &models.Project{
		ID:        "prj_1",
		Title:     "silent",
		Status:    models.ProjectDraft,
		AudioPath: "uploads/prj_1/deleted.mp3",
		Slides: []models.Slide{
			{ImagePath: "uploads/prj_1/one.png", Duration: 2, Order: 0},
		},
	}}
	enc := &fakeEncoder{}

	p := New(Deps{Cfg: cfg, Projects: projects, Progress: &fakeProgress{}, Encoder: enc, Log: testLogger()})
	if err := p.runSlideshow(context.Background(), slideshowTask(), p.log); err != nil {
		t.Fatalf("runSlideshow() error = %v", err)
	}

	if enc.slideshowSpec.AudioPath != "" {
		t.Errorf("audio path = %q, want empty for a missing track", enc.slideshowSpec.AudioPath)
	}
	if !strings.Contains(projects.artMessage, "audio") {
		t.Errorf("message %q does not mention the dropped audio", projects.artMessage)
	}
}
