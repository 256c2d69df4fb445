// Package publish pushes rendered shorts to external platforms.
package publish

import (
	"context"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
	"shortforge/internal/store"
)

// YouTube uploads shorts with stored OAuth credentials, refreshing the
// access token through the standard token source and persisting refreshed
// tokens back to the account store.
type YouTube struct {
	oauth    oauth2.Config
	accounts *store.SocialStore
	log      *logger.Logger
}

func NewYouTube(clientID, clientSecret string, accounts *store.SocialStore, log *logger.Logger) *YouTube {
	return &YouTube{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope},
		},
		accounts: accounts,
		log:      log.WithComponent("publish.youtube"),
	}
}

// Configured reports whether OAuth client credentials are present.
func (y *YouTube) Configured() bool {
	return y.oauth.ClientID != "" && y.oauth.ClientSecret != ""
}

// Upload publishes the short and returns the platform video id. Social
// copy takes precedence over the raw title/description when present.
func (y *YouTube) Upload(ctx context.Context, short *models.Short, privacy string) (string, error) {
	if !y.Configured() {
		return "", errors.New(errors.CodeFailedPrecond, "youtube publishing is not configured")
	}

	account, err := y.accounts.Get(ctx, "youtube")
	if err != nil {
		return "", errors.AuthExpired("youtube")
	}

	token := &oauth2.Token{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
	}
	if account.ExpiresAt != nil {
		token.Expiry = *account.ExpiresAt
	}

	src := y.oauth.TokenSource(ctx, token)
	fresh, err := src.Token()
	if err != nil {
		// Refresh failures mean the grant was revoked or expired; the
		// operator has to run the auth flow again.
		return "", errors.AuthExpired("youtube")
	}
	if fresh.AccessToken != account.AccessToken {
		account.AccessToken = fresh.AccessToken
		if fresh.RefreshToken != "" {
			account.RefreshToken = fresh.RefreshToken
		}
		expiry := fresh.Expiry
		account.ExpiresAt = &expiry
		if err := y.accounts.Save(ctx, account); err != nil {
			y.log.Warn("failed to persist refreshed token", "error", err.Error())
		}
	}

	service, err := youtube.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return "", errors.ExternalService(err, "youtube")
	}

	f, err := os.Open(short.VideoPath)
	if err != nil {
		return "", errors.SourceNotFound(short.VideoPath)
	}
	defer f.Close()

	if privacy == "" {
		privacy = "private"
	}

	title := short.SocialTitle
	if title == "" {
		title = short.Title
	}
	description := short.SocialDescription
	if description == "" {
		description = short.Description
	}
	tags := short.Tags
	if len(short.SocialHashtags) > 0 {
		tags = append(append([]string{}, tags...), short.SocialHashtags...)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: description,
			Tags:        tags,
			CategoryId:  "24",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	uploaded, err := call.Media(f).Context(ctx).Do()
	if err != nil {
		if strings.Contains(err.Error(), "quotaExceeded") {
			return "", errors.WrapWithCode(err, errors.CodeResourceExhaust, "publish.youtube", "daily upload quota exceeded")
		}
		return "", errors.ExternalService(err, "youtube")
	}

	y.log.Info("short uploaded", "short_id", short.ID, "youtube_id", uploaded.Id)
	return uploaded.Id, nil
}

// SetRedirectURL points the consent flow at a local callback. Only
// cmd/ytauth uses this; uploads refresh through the stored token.
func (y *YouTube) SetRedirectURL(u string) {
	y.oauth.RedirectURL = u
}

// AuthURL starts the offline-access consent flow for cmd/ytauth.
func (y *YouTube) AuthURL(state string) string {
	return y.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it.
func (y *YouTube) Exchange(ctx context.Context, code string) error {
	token, err := y.oauth.Exchange(ctx, code)
	if err != nil {
		return errors.ExternalService(err, "youtube")
	}

	expiry := token.Expiry
	return y.accounts.Save(ctx, &models.SocialAccount{
		Provider:     "youtube",
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    &expiry,
	})
}
