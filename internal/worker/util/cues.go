// Package util holds small helpers shared by the task pipelines.
package util

import (
	"strings"

	"github.com/samber/lo"

	"shortforge/internal/models"
)

// JoinCues flattens a cue list into plain transcript text.
func JoinCues(cues []models.Cue) string {
	texts := lo.Map(cues, func(c models.Cue, _ int) string {
		return strings.TrimSpace(c.Text)
	})
	return strings.Join(lo.Compact(texts), " ")
}

// WindowCues selects the cues overlapping [start, end) and rebases their
// times so the clip starts at zero. Cues straddling a boundary are clipped
// to the window rather than dropped.
func WindowCues(cues []models.Cue, start, end float64) []models.Cue {
	var out []models.Cue
	for _, c := range cues {
		if c.End <= start || c.Start >= end {
			continue
		}
		s := c.Start
		if s < start {
			s = start
		}
		e := c.End
		if e > end {
			e = end
		}
		out = append(out, models.Cue{
			Text:  c.Text,
			Start: s - start,
			End:   e - start,
		})
	}
	return out
}
