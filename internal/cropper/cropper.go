// Package cropper cuts a region out of an original image and scales it to a
// thumbnail size.
package cropper

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Request describes one crop: the region of the source, in source pixels,
// and the target thumbnail dimensions. A zero target dimension is derived
// from the region's aspect ratio; both zero keeps the region's size.
type Request struct {
	Region image.Rectangle
	Width  uint
	Height uint
}

// Crop reads the image at src, applies req and writes the result to dst.
// The output format follows dst's extension. It returns the size of the
// written image.
func Crop(src, dst string, req Request) (image.Point, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return image.Point{}, fmt.Errorf("failed to open source image: %w", err)
	}

	region := req.Region.Intersect(img.Bounds())
	if region.Empty() {
		return image.Point{}, fmt.Errorf("crop region %v is outside the image bounds %v", req.Region, img.Bounds())
	}

	var out image.Image = imaging.Crop(img, region)
	if req.Width > 0 || req.Height > 0 {
		out = resize.Resize(req.Width, req.Height, out, resize.Lanczos3)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return image.Point{}, fmt.Errorf("failed to create thumbnail directory: %w", err)
	}
	if err := imaging.Save(out, dst, imaging.JPEGQuality(90)); err != nil {
		return image.Point{}, fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return out.Bounds().Size(), nil
}

// DecodeSize returns the dimensions and format name of the image read from
// r without decoding its pixels. The formats imaging can open are
// registered, so the result tells whether Crop will accept the file.
func DecodeSize(r io.Reader) (image.Point, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return image.Point{}, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return image.Pt(cfg.Width, cfg.Height), format, nil
}
