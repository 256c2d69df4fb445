package mediafs

import (
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	s := New(t.TempDir())

	n, err := s.Save("uploads/prj_1/img.png", strings.NewReader("\x89PNG\r\n\x1a\ndata"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if n != 12 {
		t.Errorf("Save() wrote %d bytes, want 12", n)
	}

	f, contentType, err := s.Open("uploads/prj_1/img.png")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	if contentType != "image/png" {
		t.Errorf("content type = %q, want image/png", contentType)
	}
	data, _ := io.ReadAll(f)
	if len(data) != 12 {
		t.Errorf("read %d bytes, want 12", len(data))
	}
}

func TestKeyTraversalRejected(t *testing.T) {
	s := New(t.TempDir())

	for _, key := range []string{"../outside.txt", "/etc/passwd", ".", ""} {
		if _, err := s.Save(key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) accepted an escaping key", key)
		}
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Remove("never/existed.mp4"); err != nil {
		t.Errorf("Remove() on missing file error = %v", err)
	}
}
