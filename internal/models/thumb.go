package models

import "time"

// Thumb is one cropped size of an Image. Name is the size slug and is unique
// per image.
type Thumb struct {
	ID         int64     `json:"id"`
	ImageID    int64     `json:"image_id"`
	Name       string    `json:"name"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CropX      int       `json:"crop_x"`
	CropY      int       `json:"crop_y"`
	CropW      int       `json:"crop_w"`
	CropH      int       `json:"crop_h"`
	ImageCount int       `json:"-"` // number of image_thumbs rows
	CreatedAt  time.Time `json:"-"`
}

// IsTemporary reports whether the thumb has not been attached to any image
// yet, in which case its file still carries TempSuffix.
func (t *Thumb) IsTemporary() bool {
	return t.ImageCount == 0
}
