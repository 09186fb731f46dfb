// This file contains shared fixtures for tests that need images, thumbs
// and size sets in the database.

package testutil

import (
	"testing"

	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/store"
)

// CreateImage inserts an image attached to parent.
func CreateImage(t *testing.T, s *store.Store, parent models.ParentRef, path string) *models.Image {
	t.Helper()
	img, err := s.CreateImage(&models.Image{Parent: parent, Path: path, Width: 2000, Height: 1500})
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	return img
}

// CreateThumb crops a thumb of the given size from img. When attach is true
// the thumb is also attached to the image, i.e. it is no longer temporary.
func CreateThumb(t *testing.T, s *store.Store, img *models.Image, name string, width, height int, attach bool) *models.Thumb {
	t.Helper()
	thumb, err := s.SaveCrop(&models.Thumb{ImageID: img.ID, Name: name, Width: width, Height: height})
	if err != nil {
		t.Fatalf("Failed to create test thumb %q: %v", name, err)
	}
	if attach {
		attached, err := s.ListImageThumbs(img.ID)
		if err != nil {
			t.Fatalf("Failed to list thumbs: %v", err)
		}
		ids := []int64{thumb.ID}
		for _, a := range attached {
			ids = append(ids, a.ID)
		}
		if _, err := s.SetImageThumbs(img.ID, ids); err != nil {
			t.Fatalf("Failed to attach test thumb %q: %v", name, err)
		}
		thumb.ImageCount = 1
	}
	return thumb
}

// CreateSizeSet inserts a size set with the given sizes.
func CreateSizeSet(t *testing.T, s *store.Store, slug string, sizes ...*models.Size) *models.SizeSet {
	t.Helper()
	ss, err := s.SaveSizeSet(&models.SizeSet{Name: slug, Slug: slug, Sizes: sizes})
	if err != nil {
		t.Fatalf("Failed to create test size set %q: %v", slug, err)
	}
	return ss
}
