// Package mediafs stores uploaded and rendered media under a single root
// directory, addressed by slash-separated relative keys.
package mediafs

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"shortforge/internal/pkg/errors"
)

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

// abs resolves a relative key inside the root. Keys that escape the root
// are rejected.
func (s *Store) abs(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", errors.New(errors.CodeValidation, "invalid media key")
	}
	return filepath.Join(s.root, clean), nil
}

// Save writes the reader's content at the key and returns the byte count.
// A failed write leaves no partial file behind.
func (s *Store) Save(key string, r io.Reader) (int64, error) {
	dst, err := s.abs(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, errors.Wrap(err, "mediafs.save", "create dir")
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, errors.Wrap(err, "mediafs.save", "create file")
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, errors.Wrap(err, "mediafs.save", "write file")
	}
	return n, nil
}

// Open returns the file with its content type, preferring the extension
// and sniffing the first bytes when the extension says nothing.
func (s *Store) Open(key string) (io.ReadSeekCloser, string, error) {
	p, err := s.abs(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, "", errors.SourceNotFound(key)
	}

	contentType := mime.TypeByExtension(filepath.Ext(p))
	if contentType == "" {
		buf := make([]byte, 512)
		n, _ := f.Read(buf)
		_, _ = f.Seek(0, 0)
		contentType = http.DetectContentType(buf[:n])
	}
	return f, contentType, nil
}

func (s *Store) Remove(key string) error {
	p, err := s.abs(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "mediafs.remove", "remove file")
	}
	return nil
}
