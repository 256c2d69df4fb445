package compose

import (
	"strings"
	"testing"

	"shortforge/internal/models"
)

func TestVideoFilterPortrait(t *testing.T) {
	filter, err := VideoFilter(models.AspectPortrait, 1920, 1080)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Letterbox onto the fixed canvas: scale to width, pad onto black.
	for _, want := range []string{"scale=1080", "pad=1080:1920", "black"} {
		if !strings.Contains(filter, want) {
			t.Errorf("portrait filter missing %q: %s", want, filter)
		}
	}
	if strings.Contains(filter, "crop=iw") {
		t.Errorf("portrait must letterbox, not landscape-crop: %s", filter)
	}
}

func TestVideoFilterLandscape(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		height    int
		wantCrop  bool
	}{
		{
			name:  "taller than 16:9 gets cropped",
			width: 1920, height: 1440,
			wantCrop: true,
		},
		{
			name:  "portrait source gets cropped",
			width: 1080, height: 1920,
			wantCrop: true,
		},
		{
			name:  "exact 16:9 passes through",
			width: 1920, height: 1080,
			wantCrop: false,
		},
		{
			name:  "wider than 16:9 passes through, never pads",
			width: 2560, height: 1080,
			wantCrop: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := VideoFilter(models.AspectLandscape, tt.width, tt.height)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantCrop {
				if !strings.Contains(filter, "crop=") {
					t.Errorf("expected crop filter, got %q", filter)
				}
				if strings.Contains(filter, "pad=") {
					t.Errorf("landscape must never pad: %s", filter)
				}
			} else if filter != "" {
				t.Errorf("expected passthrough, got %q", filter)
			}
		})
	}
}

func TestVideoFilterOriginal(t *testing.T) {
	filter, err := VideoFilter(models.AspectOriginal, 640, 480)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter != "" {
		t.Errorf("original must pass through, got %q", filter)
	}
}

func TestVideoFilterUnknownRatio(t *testing.T) {
	if _, err := VideoFilter(models.AspectRatio("4:3"), 640, 480); err == nil {
		t.Fatal("expected error for unsupported ratio")
	}
}

func TestLandscapeTargetHeightEven(t *testing.T) {
	for _, w := range []int{1920, 1280, 854, 1080} {
		h := landscapeTargetHeight(w)
		if h%2 != 0 {
			t.Errorf("target height for width %d is odd: %d", w, h)
		}
		if h > w*9/16 {
			t.Errorf("target height %d exceeds %d*9/16", h, w)
		}
	}
}
