package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
)

const graphAPIBase = "https://graph.facebook.com/v19.0"

// Container processing poll schedule. Publishing runs inside a synchronous
// HTTP handler, so the whole budget (attempts * interval = 48s) must stay
// below the API server's 60s write timeout or the client loses the
// response after the reel is already live.
const (
	containerPollAttempts = 8
	containerPollInterval = 6 * time.Second
)

// Instagram publishes reels through the Graph API three-step flow: create
// a media container from a public video URL, poll until processing
// finishes, then publish the container.
type Instagram struct {
	accessToken string
	accountID   string
	http        *http.Client
	base        string
	pollEvery   time.Duration
	log         *logger.Logger
}

func NewInstagram(accessToken, accountID string, log *logger.Logger) *Instagram {
	return &Instagram{
		accessToken: accessToken,
		accountID:   accountID,
		http:        &http.Client{Timeout: 60 * time.Second},
		base:        graphAPIBase,
		pollEvery:   containerPollInterval,
		log:         log.WithComponent("publish.instagram"),
	}
}

func (ig *Instagram) Configured() bool {
	return ig.accessToken != "" && ig.accountID != ""
}

type graphResponse struct {
	ID         string `json:"id"`
	StatusCode string `json:"status_code"`
	Error      *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// PublishReel runs the full container flow. videoURL must be publicly
// reachable; the Graph API fetches it server-side.
func (ig *Instagram) PublishReel(ctx context.Context, videoURL, caption string) (string, error) {
	if !ig.Configured() {
		return "", errors.New(errors.CodeFailedPrecond, "instagram publishing is not configured")
	}

	containerID, err := ig.createContainer(ctx, videoURL, caption)
	if err != nil {
		return "", err
	}
	ig.log.Info("container created", "container_id", containerID)

	if err := ig.waitForContainer(ctx, containerID); err != nil {
		return "", err
	}

	mediaID, err := ig.publishContainer(ctx, containerID)
	if err != nil {
		return "", err
	}
	ig.log.Info("reel published", "media_id", mediaID)
	return mediaID, nil
}

func (ig *Instagram) createContainer(ctx context.Context, videoURL, caption string) (string, error) {
	params := url.Values{
		"media_type":   {"REELS"},
		"video_url":    {videoURL},
		"caption":      {caption},
		"access_token": {ig.accessToken},
	}

	resp, err := ig.post(ctx, fmt.Sprintf("%s/%s/media", ig.base, ig.accountID), params)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New(errors.CodeExternalService, "instagram returned no container id")
	}
	return resp.ID, nil
}

// waitForContainer polls status_code until FINISHED. ERROR or exhausting
// the poll budget fails the publish.
func (ig *Instagram) waitForContainer(ctx context.Context, containerID string) error {
	for attempt := 0; attempt < containerPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "publish.instagram", "canceled while waiting for container")
		case <-time.After(ig.pollEvery):
		}

		statusURL := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
			ig.base, containerID, url.QueryEscape(ig.accessToken))
		resp, err := ig.get(ctx, statusURL)
		if err != nil {
			return err
		}

		switch resp.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR", "EXPIRED":
			return errors.New(errors.CodeExternalService, "instagram container processing failed: "+resp.StatusCode)
		default:
			ig.log.Debug("container still processing", "container_id", containerID, "status", resp.StatusCode)
		}
	}
	return errors.New(errors.CodeExternalService, "instagram container did not finish processing in time")
}

func (ig *Instagram) publishContainer(ctx context.Context, containerID string) (string, error) {
	params := url.Values{
		"creation_id":  {containerID},
		"access_token": {ig.accessToken},
	}

	resp, err := ig.post(ctx, fmt.Sprintf("%s/%s/media_publish", ig.base, ig.accountID), params)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New(errors.CodeExternalService, "instagram returned no media id")
	}
	return resp.ID, nil
}

func (ig *Instagram) post(ctx context.Context, endpoint string, params url.Values) (*graphResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "publish.instagram", "build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ig.do(req)
}

func (ig *Instagram) get(ctx context.Context, endpoint string) (*graphResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "publish.instagram", "build request")
	}
	return ig.do(req)
}

func (ig *Instagram) do(req *http.Request) (*graphResponse, error) {
	httpResp, err := ig.http.Do(req)
	if err != nil {
		return nil, errors.ExternalService(err, "instagram")
	}
	defer httpResp.Body.Close()

	var resp graphResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, errors.ExternalService(err, "instagram")
	}

	if resp.Error != nil {
		// Code 190 is an invalid or expired access token.
		if resp.Error.Code == 190 {
			return nil, errors.AuthExpired("instagram")
		}
		return nil, errors.New(errors.CodeExternalService, "instagram: "+resp.Error.Message)
	}
	if httpResp.StatusCode >= 400 {
		return nil, errors.New(errors.CodeExternalService, "instagram: "+httpResp.Status)
	}
	return &resp, nil
}
