package models

import "time"

// SocialAccount stores OAuth credentials for one publishing platform.
type SocialAccount struct {
	Provider       string     `json:"provider"`
	AccessToken    string     `json:"-"`
	RefreshToken   string     `json:"-"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ProviderUserID string     `json:"provider_user_id,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
