// Package media stores uploaded post images and avatars.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/artpar/yatube/internal/core/validation"
)

// Upload directories, relative to the media root.
const (
	DirPosts   = "posts"
	DirAvatars = "avatars"
)

// DefaultMaxUploadBytes bounds a single image upload.
const DefaultMaxUploadBytes int64 = 5 << 20

// ErrInvalidPath is returned for paths that escape the media root.
var ErrInvalidPath = errors.New("invalid media path")

// Storage writes validated images to a filesystem.
type Storage struct {
	fs       afero.Fs
	maxBytes int64
}

// NewStorage creates a storage backed by fs.
func NewStorage(fs afero.Fs, maxBytes int64) *Storage {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Storage{fs: fs, maxBytes: maxBytes}
}

// NewOSStorage creates a storage rooted at dir on the local disk.
func NewOSStorage(dir string, maxBytes int64) (*Storage, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return NewStorage(afero.NewBasePathFs(osFs, dir), maxBytes), nil
}

// MaxBytes returns the upload size limit.
func (s *Storage) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates r as an image and writes it under dir with a fresh name.
// It returns the stored path relative to the media root.
func (s *Storage) Save(dir string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ext, err := validation.DetectImage(head, int64(len(data)), s.maxBytes)
	if err != nil {
		return "", err
	}

	if err := s.fs.MkdirAll("/"+dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	name := path.Join(dir, uuid.NewString()+ext)
	if err := afero.WriteReader(s.fs, "/"+name, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// Delete removes a stored file. Missing files are ignored.
func (s *Storage) Delete(name string) error {
	if name == "" {
		return nil
	}
	clean, err := cleanPath(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", clean, err)
	}
	return nil
}

// Exists reports whether name is stored.
func (s *Storage) Exists(name string) bool {
	clean, err := cleanPath(name)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(s.fs, clean)
	return ok
}

// Handler serves stored files. Mount it with the media URL prefix stripped.
func (s *Storage) Handler() http.Handler {
	return http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
}

// URL returns the public URL for a stored file.
func URL(name string) string {
	if name == "" {
		return ""
	}
	return "/media/" + strings.TrimPrefix(name, "/")
}

func cleanPath(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" || strings.Contains(name, "..") {
		return "", ErrInvalidPath
	}
	return clean, nil
}
