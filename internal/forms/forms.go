// Package forms implements the admin form layer for images: the image
// field widget, the thumbnail multi-select, the inline formset that scopes
// thumbnail choices per image, and the hidden-input admin widget.
package forms

import (
	"html/template"

	"github.com/vrsandeep/cropduster/internal/models"
)

// ImageStore looks up images and their attached thumbs.
type ImageStore interface {
	GetImageByID(id int64) (*models.Image, error)
	ListImageThumbsByWidth(imageID int64) ([]*models.Thumb, error)
}

// ThumbLookup resolves a single thumb by ID.
type ThumbLookup interface {
	GetThumbByID(id int64) (*models.Thumb, error)
}

// CandidateStore resolves the thumbs behind a CandidateSet.
type CandidateStore interface {
	ListImageThumbs(imageID int64) ([]*models.Thumb, error)
	ListThumbsByIDs(ids []int64, ownerID int64) ([]*models.Thumb, error)
}

// SizeSetStore looks up size sets.
type SizeSetStore interface {
	GetSizeSetBySlug(slug string) (*models.SizeSet, error)
	GetSizeSetByID(id int64) (*models.SizeSet, error)
}

// Store is everything the formset needs from the persistence layer.
type Store interface {
	ImageStore
	ThumbLookup
	CandidateStore
	ListImagesByParent(parent models.ParentRef) ([]*models.Image, error)
	UpdateImageDetails(img *models.Image) error
	SetImageThumbs(imageID int64, thumbIDs []int64) ([]int64, error)
}

// Renderer executes a named template into markup.
type Renderer interface {
	RenderHTML(name string, data interface{}) (template.HTML, error)
}

// MediaURLs maps stored originals and thumbnails to public URLs.
type MediaURLs interface {
	URL(rel string) string
	ThumbURL(img *models.Image, name string, tmp bool) string
}

// cloneAttrs copies attrs so widgets can add defaults without touching the
// caller's map.
func cloneAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs)+2)
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
