// Package source opens a media file and exposes a trimmed sub-range of it
// for the downstream composition stages.
package source

import (
	"context"
	"os"

	"shortforge/internal/media/probe"
	"shortforge/internal/pkg/errors"
)

// Clip is a validated [Start, End) window into a source file. HasAudio
// tells the renderer whether to carry an audio codec; encoding a silent
// source with one fails the encode.
type Clip struct {
	Path     string
	Start    float64
	End      float64
	Width    int
	Height   int
	FPS      float64
	HasAudio bool
}

// Duration is the length of the trimmed window.
func (c Clip) Duration() float64 {
	return c.End - c.Start
}

// Opener validates clip requests against the real file.
type Opener struct {
	prober *probe.Prober
}

func NewOpener(p *probe.Prober) *Opener {
	return &Opener{prober: p}
}

// Open stats and probes path, clamps end to the true duration, and returns
// the clip. SourceNotFound when the file is missing, InvalidRange when the
// window collapses after clamping.
func (o *Opener) Open(ctx context.Context, path string, start, end float64) (*Clip, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.SourceNotFound(path)
	}

	info, err := o.prober.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	start, end, err = ClampRange(start, end, info.Duration)
	if err != nil {
		return nil, err
	}

	return &Clip{
		Path:     path,
		Start:    start,
		End:      end,
		Width:    info.Width,
		Height:   info.Height,
		FPS:      info.FPS,
		HasAudio: info.HasAudio,
	}, nil
}

// ClampRange enforces 0 <= start < end <= duration, clamping end to the
// duration rather than rejecting requests that overshoot it.
func ClampRange(start, end, duration float64) (float64, float64, error) {
	if start < 0 {
		start = 0
	}
	if duration > 0 && end > duration {
		end = duration
	}
	if start >= end {
		return 0, 0, errors.InvalidRange(start, end, duration)
	}
	return start, end, nil
}
