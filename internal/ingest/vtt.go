package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"shortforge/internal/models"
)

var vttTime = regexp.MustCompile(`(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`)

var vttTag = regexp.MustCompile(`<[^>]*>`)

// ParseVTT converts a WebVTT document into cues. Styling blocks, notes and
// inline tags are stripped; cues without text are dropped.
func ParseVTT(doc string) []models.Cue {
	var cues []models.Cue

	blocks := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")

		// Find the timing line; an optional cue identifier may precede it.
		timingIdx := -1
		var m []string
		for i, line := range lines {
			if m = vttTime.FindStringSubmatch(line); m != nil {
				timingIdx = i
				break
			}
		}
		if timingIdx < 0 {
			continue
		}

		var textLines []string
		for _, line := range lines[timingIdx+1:] {
			line = strings.TrimSpace(vttTag.ReplaceAllString(line, ""))
			if line != "" {
				textLines = append(textLines, line)
			}
		}
		if len(textLines) == 0 {
			continue
		}

		cues = append(cues, models.Cue{
			Text:  strings.Join(textLines, " "),
			Start: vttSeconds(m[1], m[2], m[3], m[4]),
			End:   vttSeconds(m[5], m[6], m[7], m[8]),
		})
	}
	return cues
}

func vttSeconds(h, m, s, ms string) float64 {
	hours := 0
	if h != "" {
		hours, _ = strconv.Atoi(h)
	}
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}
