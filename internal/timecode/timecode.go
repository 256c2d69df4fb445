// Package timecode converts between MM:SS / HH:MM:SS text and seconds.
package timecode

import (
	"fmt"
	"strconv"
	"strings"

	"shortforge/internal/pkg/logger"
)

// Parse converts "MM:SS" or "HH:MM:SS" into whole seconds. Each part must
// be a non-negative integer, most significant unit first.
func Parse(text string) (int, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")

	var units []int
	switch len(parts) {
	case 2, 3:
		units = make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("timecode: bad segment %q in %q", p, text)
			}
			units = append(units, n)
		}
	default:
		return 0, fmt.Errorf("timecode: expected MM:SS or HH:MM:SS, got %q", text)
	}

	seconds := 0
	for _, u := range units {
		seconds = seconds*60 + u
	}
	return seconds, nil
}

// ParseOrZero is the lenient form used when decoding model output: malformed
// input is logged and treated as zero rather than failing the task.
func ParseOrZero(text string, log *logger.Logger) int {
	s, err := Parse(text)
	if err != nil {
		if log != nil {
			log.Warn("ignoring malformed timecode", "input", text, "error", err.Error())
		}
		return 0
	}
	return s
}

// Format renders seconds as MM:SS, or HH:MM:SS once the value reaches an
// hour. Negative input is clamped to zero.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
