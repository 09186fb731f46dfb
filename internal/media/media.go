// Package media maps media-relative paths of originals and thumbnails to
// files under the media root and to public URLs.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vrsandeep/cropduster/internal/models"
)

// Storage is a media root on local disk served at a base URL.
type Storage struct {
	root    string
	baseURL string
}

// New returns a Storage rooted at root and served under baseURL.
func New(root, baseURL string) *Storage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Storage{root: root, baseURL: baseURL}
}

// Root returns the directory holding the media files.
func (s *Storage) Root() string {
	return s.root
}

// URL returns the public URL of a media-relative path.
func (s *Storage) URL(rel string) string {
	return s.baseURL + strings.TrimPrefix(path.Clean("/"+rel), "/")
}

// Path returns the filesystem path of a media-relative path. Paths that
// would escape the root are rejected.
func (s *Storage) Path(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("invalid media path %q", rel)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// ThumbURL returns the URL of the named thumbnail of img. Thumbs that have not
// been attached yet live at their temporary path.
func (s *Storage) ThumbURL(img *models.Image, name string, tmp bool) string {
	return s.URL(img.ThumbPath(name, tmp))
}

// SaveOriginal copies r into a fresh upload directory and returns the
// media-relative path of the stored file.
func (s *Storage) SaveOriginal(r io.Reader, ext string) (string, error) {
	rel := path.Join("uploads", uuid.NewString(), "original"+strings.ToLower(ext))
	dst, err := s.Path(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return rel, f.Close()
}

// PromoteThumb renames the temporary file of the named thumbnail to its final
// name. A missing temporary file is not an error: the thumb was promoted
// before, or its file was produced elsewhere.
func (s *Storage) PromoteThumb(img *models.Image, name string) error {
	if err := s.moveThumb(img, name, true); err != nil {
		return fmt.Errorf("failed to promote thumbnail %q: %w", name, err)
	}
	return nil
}

// DemoteThumb moves the file of a detached thumbnail back to its temporary
// name, where the cleanup job looks for it.
func (s *Storage) DemoteThumb(img *models.Image, name string) error {
	if err := s.moveThumb(img, name, false); err != nil {
		return fmt.Errorf("failed to demote thumbnail %q: %w", name, err)
	}
	return nil
}

func (s *Storage) moveThumb(img *models.Image, name string, fromTmp bool) error {
	src, err := s.Path(img.ThumbPath(name, fromTmp))
	if err != nil {
		return err
	}
	dst, err := s.Path(img.ThumbPath(name, !fromTmp))
	if err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Remove deletes a media file, ignoring files that are already gone.
func (s *Storage) Remove(rel string) error {
	p, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
