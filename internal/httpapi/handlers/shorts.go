package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"shortforge/internal/httpkit"
	"shortforge/internal/models"
	"shortforge/internal/timecode"
)

type CreateShortRequest struct {
	VideoID     string   `json:"video_id"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	AspectRatio string   `json:"aspect_ratio"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// PostShort queues a clip render. Start and end are timecodes ("MM:SS" or
// "HH:MM:SS"); malformed values parse as zero and the range is clamped
// against the source in the worker.
func (h *Handler) PostShort(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateShortRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}
	if strings.TrimSpace(req.VideoID) == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "video_id is required", map[string]any{"field": "video_id"})
		return
	}
	ratio := models.AspectRatio(req.AspectRatio)
	if req.AspectRatio == "" {
		ratio = models.AspectPortrait
	}
	if !ratio.Valid() {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "unknown aspect ratio", map[string]any{"field": "aspect_ratio"})
		return
	}

	if _, err := h.videos.Get(ctx, req.VideoID); err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	log := h.log.FromContext(ctx)
	start := timecode.ParseOrZero(req.Start, log)
	end := timecode.ParseOrZero(req.End, log)

	h.enqueueTask(ctx, w, models.TaskShort, map[string]any{
		"video_id":     req.VideoID,
		"start":        start,
		"end":          end,
		"aspect_ratio": string(ratio),
		"title":        req.Title,
		"description":  req.Description,
		"tags":         req.Tags,
	})
}

// PostSubtitles queues a subtitle burn-in over an existing short.
func (h *Handler) PostSubtitles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shortID := chi.URLParam(r, "shortId")

	if _, err := h.shorts.Get(ctx, shortID); err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	h.enqueueTask(ctx, w, models.TaskSubtitles, map[string]any{"short_id": shortID})
}

func (h *Handler) ListShorts(w http.ResponseWriter, r *http.Request) {
	videoID := strings.TrimSpace(r.URL.Query().Get("video_id"))
	shorts, err := h.shorts.List(r.Context(), videoID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"shorts": shorts})
}

func (h *Handler) GetShort(w http.ResponseWriter, r *http.Request) {
	short, err := h.shorts.Get(r.Context(), chi.URLParam(r, "shortId"))
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"short": short})
}

// StreamShort serves the rendered file with range support.
func (h *Handler) StreamShort(w http.ResponseWriter, r *http.Request) {
	short, err := h.shorts.Get(r.Context(), chi.URLParam(r, "shortId"))
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	h.streamMedia(w, r, short.VideoPath)
}

func (h *Handler) DeleteShort(w http.ResponseWriter, r *http.Request) {
	shortID := chi.URLParam(r, "shortId")

	videoPath, thumbPath, err := h.shorts.Delete(r.Context(), shortID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	h.removeMedia(videoPath)
	h.removeMedia(thumbPath)

	httpkit.WriteJSON(w, 200, map[string]any{"deleted": shortID})
}

type PublishYouTubeRequest struct {
	Privacy string `json:"privacy,omitempty"`
}

// PublishYouTube uploads the short synchronously. Uploads are bounded by
// the platform, not by local encode capacity, so they do not go through
// the task queue.
func (h *Handler) PublishYouTube(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PublishYouTubeRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil && r.ContentLength > 0 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	short, err := h.shorts.Get(ctx, chi.URLParam(r, "shortId"))
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	// Upload reads the file directly.
	short.VideoPath = filepath.Join(h.cfg.MediaRoot, filepath.FromSlash(short.VideoPath))

	videoID, err := h.youtube.Upload(ctx, short, req.Privacy)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"short_id":   short.ID,
		"youtube_id": videoID,
		"url":        "https://www.youtube.com/watch?v=" + videoID,
	})
}

type PublishInstagramRequest struct {
	Caption string `json:"caption,omitempty"`
}

// PublishInstagram publishes the short as a reel. The Graph API fetches
// the video over HTTP, so the instance must be reachable at
// PUBLIC_BASE_URL.
func (h *Handler) PublishInstagram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PublishInstagramRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil && r.ContentLength > 0 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	short, err := h.shorts.Get(ctx, chi.URLParam(r, "shortId"))
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	caption := req.Caption
	if caption == "" {
		caption = short.SocialDescription
		if caption == "" {
			caption = short.Title
		}
		for _, tag := range short.SocialHashtags {
			caption += " #" + tag
		}
	}

	videoURL := h.cfg.PublicBaseURL + "/media/" + short.VideoPath
	mediaID, err := h.instagram.PublishReel(ctx, videoURL, caption)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{
		"short_id":           short.ID,
		"instagram_media_id": mediaID,
	})
}
