package util

import (
	"testing"

	"shortforge/internal/models"
)

func TestJoinCues(t *testing.T) {
	cues := []models.Cue{
		{Text: "hello"},
		{Text: "  "},
		{Text: "world"},
	}
	if got := JoinCues(cues); got != "hello world" {
		t.Errorf("JoinCues = %q", got)
	}
	if got := JoinCues(nil); got != "" {
		t.Errorf("JoinCues(nil) = %q", got)
	}
}

func TestWindowCues(t *testing.T) {
	cues := []models.Cue{
		{Text: "before", Start: 0, End: 5},
		{Text: "straddles start", Start: 8, End: 12},
		{Text: "inside", Start: 15, End: 20},
		{Text: "straddles end", Start: 28, End: 35},
		{Text: "after", Start: 40, End: 45},
	}

	got := WindowCues(cues, 10, 30)
	if len(got) != 3 {
		t.Fatalf("expected 3 cues, got %d: %+v", len(got), got)
	}

	// Rebased to the clip's zero and clipped to the window.
	if got[0].Text != "straddles start" || got[0].Start != 0 || got[0].End != 2 {
		t.Errorf("cue 0 = %+v", got[0])
	}
	if got[1].Start != 5 || got[1].End != 10 {
		t.Errorf("cue 1 = %+v", got[1])
	}
	if got[2].Start != 18 || got[2].End != 20 {
		t.Errorf("cue 2 = %+v", got[2])
	}
}

func TestWindowCuesEmpty(t *testing.T) {
	if got := WindowCues(nil, 0, 10); got != nil {
		t.Errorf("expected nil, got %v", got)
	}

	cues := []models.Cue{{Text: "x", Start: 0, End: 1}}
	if got := WindowCues(cues, 50, 60); got != nil {
		t.Errorf("expected nil for non-overlapping window, got %v", got)
	}
}
