package render

import (
	"strings"
	"testing"
)

func TestShortThumbnailTime(t *testing.T) {
	tests := []struct {
		duration float64
		want     float64
	}{
		{60, 30},
		{1, 0.5},
		{0, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := ShortThumbnailTime(tt.duration); got != tt.want {
			t.Errorf("ShortThumbnailTime(%v) = %v, want %v", tt.duration, got, tt.want)
		}
	}
}

func TestSlideshowThumbnailTime(t *testing.T) {
	tests := []struct {
		duration float64
		want     float64
	}{
		{10, 1},    // min(1, 5)
		{2, 1},     // min(1, 1)
		{1, 0.5},   // min(1, 0.5)
		{0.5, 0.25},
		{0, 0},
	}
	for _, tt := range tests {
		if got := SlideshowThumbnailTime(tt.duration); got != tt.want {
			t.Errorf("SlideshowThumbnailTime(%v) = %v, want %v", tt.duration, got, tt.want)
		}
	}
}

func TestSlideshowSpecTotalDuration(t *testing.T) {
	spec := SlideshowSpec{
		Slides: []Slide{
			{Path: "a.jpg", Duration: 3},
			{Path: "b.jpg", Duration: 4.5},
		},
	}
	if got := spec.TotalDuration(); got != 7.5 {
		t.Errorf("TotalDuration = %v, want 7.5", got)
	}
}

func TestSlideshowFilter(t *testing.T) {
	filter := slideshowFilter(3, 1080, 1920, nil)

	for _, want := range []string{
		"[0:v]scale=1080:1920",
		"[2:v]scale=1080:1920",
		"concat=n=3:v=1:a=0[v]",
		"[vout]",
	} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter missing %q: %s", want, filter)
		}
	}
}

func TestSlideshowFilterWithOverlays(t *testing.T) {
	overlays := []string{"drawtext=text='a'", "drawtext=text='b'"}
	filter := slideshowFilter(1, 1080, 1920, overlays)

	if !strings.Contains(filter, "[v]drawtext=text='a',drawtext=text='b'[vout]") {
		t.Errorf("overlays not chained onto concat output: %s", filter)
	}
}

func TestTail(t *testing.T) {
	if got := tail("hello", 10); got != "hello" {
		t.Errorf("tail short = %q", got)
	}
	if got := tail("abcdefghij", 4); got != "ghij" {
		t.Errorf("tail long = %q", got)
	}
}
