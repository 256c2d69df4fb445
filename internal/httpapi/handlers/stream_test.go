package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"shortforge/internal/mediafs"
)

func streamHandler(t *testing.T) *Handler {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "shorts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "shorts", "clip.mp4"), []byte("rendered bytes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return &Handler{media: mediafs.New(root)}
}

func TestStreamMediaServesFile(t *testing.T) {
	h := streamHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/shorts/sht_1/content", nil)
	h.streamMedia(rec, req, "shorts/clip.mp4")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("expected Content-Type video/mp4, got %q", ct)
	}
	if rec.Body.String() != "rendered bytes" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestStreamMediaHonorsRange(t *testing.T) {
	h := streamHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/shorts/sht_1/content", nil)
	req.Header.Set("Range", "bytes=0-3")
	h.streamMedia(rec, req, "shorts/clip.mp4")

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d", rec.Code)
	}
	if rec.Body.String() != "rend" {
		t.Errorf("expected first four bytes, got %q", rec.Body.String())
	}
}

func TestStreamMediaMissingFile(t *testing.T) {
	h := streamHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/shorts/sht_2/content", nil)
	h.streamMedia(rec, req, "shorts/gone.mp4")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
