package overlay

import (
	"fmt"
	"os"
	"strings"

	"shortforge/internal/models"
)

// SubtitleStyle configures the burned-in caption appearance via the
// libass force_style mechanism.
type SubtitleStyle struct {
	FontSize int
	FontName string
	Bold     int
	MarginV  int
	Outline  int
	Shadow   int
}

// DefaultSubtitleStyle is a bottom-anchored, center-aligned caption style.
func DefaultSubtitleStyle() SubtitleStyle {
	return SubtitleStyle{
		FontSize: 14,
		FontName: "DejaVu Sans",
		Bold:     1,
		MarginV:  50,
		Outline:  2,
		Shadow:   1,
	}
}

// WriteSRT renders cues as an SRT file at path. Cues with empty text are
// dropped; returns the number written.
func WriteSRT(cues []models.Cue, path string) (int, error) {
	var b strings.Builder
	n := 0
	for _, c := range cues {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", n, srtTimestamp(c.Start), srtTimestamp(c.End), text)
	}
	if n == 0 {
		return 0, fmt.Errorf("no usable cues")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return 0, err
	}
	return n, nil
}

// BurnFilter builds the subtitles video filter for an SRT file.
// Alignment=2 is bottom-center in the ASS numpad convention.
func BurnFilter(srtPath string, style SubtitleStyle) string {
	forceStyle := fmt.Sprintf("Fontsize=%d,Fontname=%s,Bold=%d,MarginV=%d,Outline=%d,Shadow=%d,Alignment=2",
		style.FontSize, style.FontName, style.Bold, style.MarginV, style.Outline, style.Shadow)
	return fmt.Sprintf("subtitles=%s:force_style='%s'", escapeSubtitlePath(srtPath), forceStyle)
}

// srtTimestamp renders seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := int(seconds) % 60
	ms := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// escapeSubtitlePath escapes a path for use inside the subtitles filter.
func escapeSubtitlePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "\\'")
	return path
}
