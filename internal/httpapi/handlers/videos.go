package handlers

import (
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shortforge/internal/httpkit"
	"shortforge/internal/models"
)

type IngestRequest struct {
	URL string `json:"url"`
}

// PostVideo queues a source ingest. The download, probe and clip
// suggestion all happen in the worker; the response carries the task id
// to poll.
func (h *Handler) PostVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IngestRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "url is required", map[string]any{"field": "url"})
		return
	}

	h.enqueueTask(ctx, w, models.TaskIngest, map[string]any{"url": req.URL})
}

func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.List(r.Context())
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"videos": videos})
}

func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := h.videos.Get(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"video": video})
}

// DeleteVideo removes the record and its files. Shorts cut from the video
// keep their own artifacts and stay addressable.
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	filePath, thumbPath, err := h.videos.Delete(r.Context(), videoID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	h.removeMedia(filePath)
	h.removeMedia(thumbPath)

	httpkit.WriteJSON(w, 200, map[string]any{"deleted": videoID})
}

// GetTrending proxies the platform's most-popular chart, used to scout
// source material.
func (h *Handler) GetTrending(w http.ResponseWriter, r *http.Request) {
	if !h.trending.Configured() {
		httpkit.WriteErr(w, 412, "FAILED_PRECONDITION", "trending lookup is not configured", nil)
		return
	}

	region := strings.TrimSpace(r.URL.Query().Get("region"))
	if region == "" {
		region = "US"
	}
	limit := int64(10)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	items, err := h.trending.List(r.Context(), region, limit)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"videos": items, "region": region})
}

// removeMedia deletes a media-root-relative file, ignoring failures. The
// record is already gone; a leftover file is not worth a 500.
func (h *Handler) removeMedia(rel string) {
	if rel == "" {
		return
	}
	if err := h.media.Remove(rel); err != nil {
		h.log.Warn("failed to remove media file", "path", rel, "error", err.Error())
	}
}

// streamMedia serves a media-root-relative file with range support.
func (h *Handler) streamMedia(w http.ResponseWriter, r *http.Request, key string) {
	f, contentType, err := h.media.Open(key)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, path.Base(key), time.Time{}, f)
}
