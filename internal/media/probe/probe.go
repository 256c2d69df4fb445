// Package probe wraps ffprobe for stream inspection.
package probe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"shortforge/internal/pkg/errors"
)

// Info describes a media file as reported by ffprobe.
type Info struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
	HasAudio bool
}

// Prober runs ffprobe with a configured binary path.
type Prober struct {
	Bin string
}

func New(bin string) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{Bin: bin}
}

type ffprobeOut struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe inspects the file at path. The call is bounded to 15s so a hung
// ffprobe cannot stall a worker slot.
func (p *Prober) Probe(ctx context.Context, path string) (Info, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return Info{}, errors.Wrap(err, "probe", "ffprobe failed for "+path)
	}

	var parsed ffprobeOut
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Info{}, errors.Wrap(err, "probe", "unparseable ffprobe output")
	}

	info := Info{}
	info.Duration, _ = strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width = s.Width
				info.Height = s.Height
				info.FPS = parseFrameRate(s.AvgFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}

	return info, nil
}

// Duration is a convenience for callers that only need the length.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	info, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// parseFrameRate converts ffprobe's "num/den" rate to a float. "0/0"
// (images, some containers) yields 0.
func parseFrameRate(r string) float64 {
	num, den, ok := strings.Cut(r, "/")
	if !ok {
		f, _ := strconv.ParseFloat(r, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
