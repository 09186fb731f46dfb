// This file defines the records behind the image widgets: uploaded images,
// their cropped thumbnails, and the size sets that describe crop targets.

package models

import (
	"path"
	"strings"
	"time"
)

// TempSuffix is inserted before the file extension of a thumbnail that has
// not been attached to any image yet.
const TempSuffix = "_tmp"

// ParentRef is a weak, polymorphic reference to the object an image is
// attached to. The zero value means the image is not attached.
type ParentRef struct {
	ContentType string `json:"content_type"`
	ObjectID    int64  `json:"object_id"`
}

// IsZero reports whether the reference points at nothing.
func (p ParentRef) IsZero() bool {
	return p.ContentType == "" && p.ObjectID == 0
}

// Image is an uploaded original image.
type Image struct {
	ID              int64     `json:"id"`
	Parent          ParentRef `json:"parent"`
	SizeSetID       *int64    `json:"size_set_id,omitempty"`
	Path            string    `json:"path"` // relative to the media root
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	Attribution     string    `json:"attribution"`
	AttributionLink string    `json:"attribution_link"`
	Caption         string    `json:"caption"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// ContentObject returns the parent reference, or nil when the image is
// not attached to anything yet.
func (i *Image) ContentObject() *ParentRef {
	if i == nil || i.Parent.IsZero() {
		return nil
	}
	p := i.Parent
	return &p
}

// ThumbPath returns the media-relative path of the thumbnail called name,
// stored next to the original. Temporary thumbnails carry TempSuffix.
func (i *Image) ThumbPath(name string, tmp bool) string {
	dir, file := path.Split(i.Path)
	ext := path.Ext(file)
	if ext == "" {
		ext = ".jpg"
	}
	if tmp {
		name += TempSuffix
	}
	return dir + name + strings.ToLower(ext)
}
