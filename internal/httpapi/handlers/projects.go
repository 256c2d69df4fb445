package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"shortforge/internal/httpkit"
	"shortforge/internal/models"
	"shortforge/internal/worker/util"
)

type CreateProjectRequest struct {
	Title    string               `json:"title"`
	Slides   []models.Slide       `json:"slides,omitempty"`
	Overlays []models.TextOverlay `json:"overlays,omitempty"`
}

func (h *Handler) PostProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProjectRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "title is required", map[string]any{"field": "title"})
		return
	}

	project := &models.Project{
		ID:       util.NewID("prj"),
		Title:    strings.TrimSpace(req.Title),
		Slides:   req.Slides,
		Overlays: req.Overlays,
		Status:   models.ProjectDraft,
	}
	if err := h.projects.Create(ctx, project); err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 201, map[string]any{"project": project})
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"projects": projects})
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"project": project})
}

type PatchProjectRequest struct {
	Slides   *[]models.Slide       `json:"slides,omitempty"`
	Overlays *[]models.TextOverlay `json:"overlays,omitempty"`
}

// PatchProject replaces the composition. Absent fields keep their current
// value; present-but-empty arrays clear it.
func (h *Handler) PatchProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectId")

	var req PatchProjectRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	project, err := h.projects.Get(ctx, projectID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	slides := project.Slides
	if req.Slides != nil {
		slides = *req.Slides
	}
	overlays := project.Overlays
	if req.Overlays != nil {
		overlays = *req.Overlays
	}

	if err := h.projects.UpdateComposition(ctx, projectID, slides, overlays); err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	project.Slides = slides
	project.Overlays = overlays
	httpkit.WriteJSON(w, 200, map[string]any{"project": project})
}

// PostProjectImage accepts one image upload and appends it as a slide.
// Optional form fields: duration (seconds), caption.
func (h *Handler) PostProjectImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectId")

	project, err := h.projects.Get(ctx, projectID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "file is required", map[string]any{"field": "file"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "unsupported image type", map[string]any{"ext": ext})
		return
	}

	key := fmt.Sprintf("uploads/%s/%s%s", projectID, util.NewID("img"), ext)
	size, err := h.media.Save(key, file)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	duration := 3.0
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		if _, err := fmt.Sscanf(raw, "%f", &duration); err != nil || duration <= 0 {
			duration = 3.0
		}
	}

	slide := models.Slide{
		ImagePath: key,
		Duration:  duration,
		Order:     len(project.Slides),
		Caption:   strings.TrimSpace(r.FormValue("caption")),
	}
	slides := append(project.Slides, slide)
	if err := h.projects.UpdateComposition(ctx, projectID, slides, project.Overlays); err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 201, map[string]any{
		"slide":      slide,
		"size_bytes": size,
	})
}

// PostProjectAudio stores the background track for the slideshow. The
// render loops or truncates it to fit the output.
func (h *Handler) PostProjectAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectId")

	project, err := h.projects.Get(ctx, projectID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	if err := r.ParseMultipartForm(128 << 20); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "file is required", map[string]any{"field": "file"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".mp3", ".m4a", ".aac", ".wav", ".ogg":
	default:
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "unsupported audio type", map[string]any{"ext": ext})
		return
	}

	key := fmt.Sprintf("uploads/%s/audio%s", projectID, ext)
	if _, err := h.media.Save(key, file); err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	if project.AudioPath != "" && project.AudioPath != key {
		h.removeMedia(project.AudioPath)
	}
	if err := h.projects.SetAudio(ctx, projectID, key); err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	httpkit.WriteJSON(w, 201, map[string]any{"audio_path": key})
}

// PostProjectRender queues the slideshow render.
func (h *Handler) PostProjectRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectId")

	project, err := h.projects.Get(ctx, projectID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	if len(project.Slides) == 0 {
		httpkit.WriteErr(w, 422, "NO_RENDERABLE_CONTENT", "project has no slides", nil)
		return
	}

	h.enqueueTask(ctx, w, models.TaskSlideshow, map[string]any{"project_id": projectID})
}

// PostProjectCaptions suggests one caption per slide. Suggestions are
// returned, not applied; the client decides what to keep.
func (h *Handler) PostProjectCaptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	project, err := h.projects.Get(ctx, chi.URLParam(r, "projectId"))
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	if len(project.Slides) == 0 {
		httpkit.WriteErr(w, 422, "NO_RENDERABLE_CONTENT", "project has no slides", nil)
		return
	}

	if !h.suggester.Enabled() {
		httpkit.WriteErr(w, 412, "FAILED_PRECONDITION", "caption suggestion is not configured", nil)
		return
	}

	texts := make([]string, len(project.Slides))
	for i, sl := range project.Slides {
		if sl.Caption != "" {
			texts[i] = sl.Caption
		} else {
			texts[i] = fmt.Sprintf("%s, part %d", project.Title, i+1)
		}
	}

	captions := h.suggester.SuggestCaptions(ctx, texts)
	if captions == nil {
		httpkit.WriteErr(w, 502, "EXTERNAL_SERVICE_ERROR", "caption suggestion unavailable", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"captions": captions})
}

// StreamProject serves the rendered slideshow.
func (h *Handler) StreamProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	if project.VideoPath == "" {
		httpkit.WriteErr(w, 404, "NOT_FOUND", "project has not been rendered", nil)
		return
	}
	h.streamMedia(w, r, project.VideoPath)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	project, err := h.projects.Get(r.Context(), projectID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}

	videoPath, thumbPath, audioPath, err := h.projects.Delete(r.Context(), projectID)
	if err != nil {
		httpkit.WriteAppErr(w, err)
		return
	}
	h.removeMedia(videoPath)
	h.removeMedia(thumbPath)
	h.removeMedia(audioPath)
	for _, sl := range project.Slides {
		h.removeMedia(sl.ImagePath)
	}

	httpkit.WriteJSON(w, 200, map[string]any{"deleted": projectID})
}
