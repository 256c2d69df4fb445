package models

import "time"

// AspectRatio selects the reframing policy applied when cutting a short.
type AspectRatio string

const (
	// AspectPortrait letterboxes the clip onto a 1080x1920 canvas.
	AspectPortrait AspectRatio = "9:16"
	// AspectLandscape center-crops vertically when the source is too tall.
	AspectLandscape AspectRatio = "16:9"
	// AspectOriginal passes the clip through unchanged.
	AspectOriginal AspectRatio = "original"
)

// Valid reports whether the ratio is one of the supported values.
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectPortrait, AspectLandscape, AspectOriginal:
		return true
	}
	return false
}

// Short is a rendered clip cut from a source video.
type Short struct {
	ID            string    `json:"id"`
	VideoID       string    `json:"video_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	VideoPath     string    `json:"video_path"`
	ThumbnailPath string    `json:"thumbnail_path"`
	StartSeconds  float64   `json:"start_seconds"`
	EndSeconds    float64   `json:"end_seconds"`

	// Social copy filled in by the suggestion service after render.
	SocialTitle       string   `json:"social_title,omitempty"`
	SocialDescription string   `json:"social_description,omitempty"`
	SocialHashtags    []string `json:"social_hashtags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
