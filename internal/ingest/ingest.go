// Package ingest downloads source videos from YouTube and fetches their
// caption tracks as cue lists.
package ingest

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kkdai/youtube/v2"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
	"shortforge/internal/pkg/logger"
)

// Result describes a downloaded source.
type Result struct {
	VideoID  string
	Title    string
	FilePath string
	Duration float64
	Cues     []models.Cue
}

// Downloader pulls a video's best progressive stream into the media root
// and its caption track, when one exists.
type Downloader struct {
	client youtube.Client
	http   *http.Client
	root   string
	log    *logger.Logger
}

func NewDownloader(mediaRoot string, log *logger.Logger) *Downloader {
	return &Downloader{
		client: youtube.Client{},
		http:   &http.Client{Timeout: 30 * time.Second},
		root:   mediaRoot,
		log:    log.WithComponent("ingest"),
	}
}

// Download fetches the video and, best-effort, its captions. The file
// lands at sources/<video_id>.mp4 under the media root; a partial file is
// removed on failure.
func (d *Downloader) Download(ctx context.Context, urlOrID string) (*Result, error) {
	video, err := d.client.GetVideoContext(ctx, urlOrID)
	if err != nil {
		return nil, errors.ExternalService(err, "youtube")
	}

	// Progressive formats carry audio and video in one stream, which is
	// what the cutting pipeline expects.
	formats := video.Formats.WithAudioChannels().Type("video/mp4")
	if len(formats) == 0 {
		formats = video.Formats.WithAudioChannels()
	}
	if len(formats) == 0 {
		return nil, errors.New(errors.CodeExternalService, "no downloadable format for "+video.ID)
	}
	format := &formats[0]

	dir := filepath.Join(d.root, "sources")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "ingest", "create sources dir")
	}
	path := filepath.Join(dir, video.ID+".mp4")

	stream, _, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, errors.ExternalService(err, "youtube")
	}
	defer stream.Close()

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "ingest", "create source file")
	}
	if _, err := io.Copy(f, stream); err != nil {
		f.Close()
		_ = os.Remove(path)
		return nil, errors.ExternalService(err, "youtube")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, errors.Wrap(err, "ingest", "flush source file")
	}

	res := &Result{
		VideoID:  video.ID,
		Title:    video.Title,
		FilePath: path,
		Duration: video.Duration.Seconds(),
	}

	res.Cues = d.fetchCaptions(ctx, video)
	return res, nil
}

// fetchCaptions pulls the first caption track as WebVTT. Missing or broken
// captions are not an error; the video simply has no cues.
func (d *Downloader) fetchCaptions(ctx context.Context, video *youtube.Video) []models.Cue {
	if len(video.CaptionTracks) == 0 {
		return nil
	}

	track := pickCaptionTrack(video.CaptionTracks)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL+"&fmt=vtt", nil)
	if err != nil {
		return nil
	}
	resp, err := d.http.Do(req)
	if err != nil {
		d.log.Warn("caption fetch failed", "video_id", video.ID, "error", err.Error())
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		d.log.Warn("caption fetch returned non-200", "video_id", video.ID, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil
	}

	cues := ParseVTT(string(body))
	d.log.Info("captions fetched", "video_id", video.ID, "cues", len(cues), "lang", track.LanguageCode)
	return cues
}

// pickCaptionTrack prefers an English track, falling back to the first.
func pickCaptionTrack(tracks []youtube.CaptionTrack) youtube.CaptionTrack {
	for _, t := range tracks {
		if t.LanguageCode == "en" || t.LanguageCode == "en-US" {
			return t
		}
	}
	return tracks[0]
}
