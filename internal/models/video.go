package models

import "time"

// Video is a downloaded source video plus its AI clip suggestions.
type Video struct {
	VideoID       string       `json:"video_id"`
	Title         string       `json:"title"`
	Duration      float64      `json:"duration_seconds"`
	FilePath      string       `json:"file_path"`
	ThumbnailPath string       `json:"thumbnail_path,omitempty"`
	Suggestions   []ClipRange  `json:"suggestions,omitempty"`
	Cues          []Cue        `json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ClipRange is one AI-suggested clip window within a source video.
type ClipRange struct {
	StartSeconds int      `json:"start_seconds"`
	EndSeconds   int      `json:"end_seconds"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Cue is a single subtitle cue with fractional second bounds.
type Cue struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}
