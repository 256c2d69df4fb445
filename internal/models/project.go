package models

import "time"

// Slide is one image in a slideshow project. Slides are rendered in
// ascending Order; values need not be contiguous.
type Slide struct {
	ImagePath string  `json:"image_path"`
	Duration  float64 `json:"duration"`
	Order     int     `json:"order"`
	Caption   string  `json:"caption,omitempty"`
}

// TextOverlay is a timed caption drawn over a slideshow or short.
// Start and End are timecode strings ("MM:SS" or "HH:MM:SS").
type TextOverlay struct {
	Text     string `json:"text"`
	Start    string `json:"start"`
	End      string `json:"end"`
	FontSize int    `json:"font_size,omitempty"`
	Color    string `json:"color,omitempty"`
	Position string `json:"position,omitempty"`
}

// Project statuses.
const (
	ProjectDraft     = "draft"
	ProjectRendering = "rendering"
	ProjectReady     = "ready"
	ProjectFailed    = "failed"
)

// Project is a slideshow composition: ordered slides, optional overlays and
// a background audio track, rendered into a single video.
type Project struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Slides        []Slide       `json:"slides"`
	Overlays      []TextOverlay `json:"overlays,omitempty"`
	AudioPath     string        `json:"audio_path,omitempty"`
	VideoPath     string        `json:"video_path,omitempty"`
	ThumbnailPath string        `json:"thumbnail_path,omitempty"`
	Status        string        `json:"status"`
	Message       string        `json:"message,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
