// Package overlay builds the ffmpeg filters for timed text overlays and
// subtitle burn-in.
package overlay

import (
	"fmt"
	"strings"

	"shortforge/internal/models"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/timecode"
)

// DefaultFontSize is used when a spec leaves font_size unset.
const DefaultFontSize = 48

// wrapFraction is the share of the canvas width a caption block may fill.
const wrapFraction = 0.8

// Drawtext converts one timed overlay into a drawtext filter. A non-positive
// window is repaired by bumping end to start+1s. Returns an error only when
// the text is empty after trimming; callers skip and log such elements.
func Drawtext(spec models.TextOverlay, canvasWidth int, fontFile string, log *logger.Logger) (string, error) {
	text := strings.TrimSpace(spec.Text)
	if text == "" {
		return "", fmt.Errorf("overlay has no text")
	}

	start := timecode.ParseOrZero(spec.Start, log)
	end := timecode.ParseOrZero(spec.End, log)
	if end <= start {
		end = start + 1
	}

	size := spec.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	color := spec.Color
	if color == "" {
		color = "white"
	}

	wrapped := WrapText(text, maxLineChars(canvasWidth, size))

	var b strings.Builder
	b.WriteString("drawtext=")
	if fontFile != "" {
		fmt.Fprintf(&b, "fontfile='%s':", escapeFilterValue(fontFile))
	}
	fmt.Fprintf(&b, "text='%s'", escapeFilterValue(wrapped))
	fmt.Fprintf(&b, ":fontsize=%d:fontcolor=%s", size, color)
	b.WriteString(":borderw=2:bordercolor=black")
	b.WriteString(":x=(w-text_w)/2:y=" + positionExpr(spec.Position))
	fmt.Fprintf(&b, ":enable='between(t,%d,%d)'", start, end)

	return b.String(), nil
}

// positionExpr maps a named position to a drawtext y expression. Captions
// default to the lower part of the frame.
func positionExpr(pos string) string {
	switch strings.ToLower(pos) {
	case "top":
		return "h*0.1"
	case "center", "middle":
		return "(h-text_h)/2"
	default:
		return "h*0.8"
	}
}

// maxLineChars estimates how many characters fit in wrapFraction of the
// canvas, assuming glyphs average ~0.55 of the font size in width.
func maxLineChars(canvasWidth, fontSize int) int {
	if canvasWidth <= 0 {
		canvasWidth = 1080
	}
	n := int(float64(canvasWidth) * wrapFraction / (float64(fontSize) * 0.55))
	if n < 8 {
		n = 8
	}
	return n
}

// WrapText word-wraps text to lines of at most width characters. Words
// longer than the width are emitted on their own line rather than split.
func WrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)

	return strings.Join(lines, "\n")
}

// escapeFilterValue escapes characters that break ffmpeg filter parsing
// inside a quoted drawtext value.
func escapeFilterValue(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}
