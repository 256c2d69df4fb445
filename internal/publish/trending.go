package publish

import (
	"context"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shortforge/internal/pkg/errors"
)

// TrendingVideo is one entry from the most-popular chart.
type TrendingVideo struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	ViewCount    uint64 `json:"view_count"`
	Thumbnail    string `json:"thumbnail,omitempty"`
}

// Trending reads the most-popular chart with an API key; no OAuth needed.
type Trending struct {
	apiKey string
}

func NewTrending(apiKey string) *Trending {
	return &Trending{apiKey: apiKey}
}

func (t *Trending) Configured() bool {
	return t.apiKey != ""
}

// List returns up to maxResults trending videos for a region (ISO 3166-1
// alpha-2, defaults to US).
func (t *Trending) List(ctx context.Context, region string, maxResults int64) ([]TrendingVideo, error) {
	if !t.Configured() {
		return nil, errors.New(errors.CodeFailedPrecond, "trending lookup is not configured")
	}
	if region == "" {
		region = "US"
	}
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 10
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(t.apiKey))
	if err != nil {
		return nil, errors.ExternalService(err, "youtube")
	}

	resp, err := service.Videos.List([]string{"snippet", "statistics"}).
		Chart("mostPopular").
		RegionCode(region).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.ExternalService(err, "youtube")
	}

	out := make([]TrendingVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		tv := TrendingVideo{VideoID: item.Id}
		if item.Snippet != nil {
			tv.Title = item.Snippet.Title
			tv.ChannelTitle = item.Snippet.ChannelTitle
			if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
				tv.Thumbnail = item.Snippet.Thumbnails.High.Url
			}
		}
		if item.Statistics != nil {
			tv.ViewCount = item.Statistics.ViewCount
		}
		out = append(out, tv)
	}
	return out, nil
}
