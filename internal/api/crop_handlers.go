package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/vrsandeep/cropduster/internal/cropper"
	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/store"
)

// Accepted upload formats, as reported by cropper.DecodeSize, mapped to the
// extension the original is stored with.
var uploadFormats = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
}

type uploadResponse struct {
	ID      int64   `json:"id"`
	URL     string  `json:"url"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	SizeSet *string `json:"size_set"`
}

// handleUpload stores a new original image. The image is not attached to
// any parent until a formset that references it is saved.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.app.Config().Upload.MaxSize
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	if err := r.ParseMultipartForm(maxSize); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Request too large or invalid multipart form")
		return
	}

	sizeSet, ok, err := s.lookupSizeSet(r.FormValue("size_set"))
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to look up size set")
		return
	}
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Unknown size set")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > maxSize {
		RespondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the %d byte limit", maxSize))
		return
	}

	dims, format, err := cropper.DecodeSize(bytes.NewReader(data))
	ext, supported := uploadFormats[format]
	if err != nil || !supported {
		RespondWithError(w, http.StatusBadRequest, "Unsupported image format")
		return
	}

	rel, err := s.app.Media().SaveOriginal(bytes.NewReader(data), ext)
	if err != nil {
		log.Printf("Failed to store upload: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	img := &models.Image{Path: rel, Width: dims.X, Height: dims.Y}
	if sizeSet != nil {
		img.SizeSetID = &sizeSet.ID
	}
	img, err = s.store.CreateImage(img)
	if err != nil {
		s.app.Media().Remove(rel)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save image")
		return
	}

	resp := uploadResponse{
		ID:     img.ID,
		URL:    s.app.Media().URL(img.Path),
		Width:  img.Width,
		Height: img.Height,
	}
	if sizeSet != nil {
		resp.SizeSet = &sizeSet.Slug
	}
	RespondWithJSON(w, http.StatusCreated, resp)
}

type ratioSize struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	MinWidth    int     `json:"min_width"`
	MinHeight   int     `json:"min_height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Fits        *bool   `json:"fits,omitempty"`
}

// handleRatio describes the sizes of a size set for the cropping script.
// With the source dimensions it also reports whether each size can be cut
// from the source.
func (s *Server) handleRatio(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("size_set")
	if slug == "" {
		RespondWithError(w, http.StatusBadRequest, "size_set is required")
		return
	}
	srcW, errW := optionalInt(r.URL.Query().Get("width"))
	srcH, errH := optionalInt(r.URL.Query().Get("height"))
	if errW != nil || errH != nil {
		RespondWithError(w, http.StatusBadRequest, "width and height must be positive integers")
		return
	}

	ss, err := s.store.GetSizeSetBySlug(slug)
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(w, http.StatusNotFound, "Size set not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to look up size set")
		return
	}

	sizes := make([]ratioSize, 0, len(ss.Sizes))
	for _, size := range ss.Sizes {
		rs := ratioSize{
			Name:        size.Name,
			Slug:        size.Slug,
			Width:       size.Width,
			Height:      size.Height,
			MinWidth:    size.MinWidth,
			MinHeight:   size.MinHeight,
			AspectRatio: size.Ratio(),
		}
		if srcW > 0 && srcH > 0 {
			fits := srcW >= max(size.Width, size.MinWidth) && srcH >= max(size.Height, size.MinHeight)
			rs.Fits = &fits
		}
		sizes = append(sizes, rs)
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"size_set": ss.Slug,
		"name":     ss.Name,
		"sizes":    sizes,
	})
}

func optionalInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid dimension %q", v)
	}
	return n, nil
}

type cropResponse struct {
	*models.Thumb
	URL       string `json:"url"`
	Temporary bool   `json:"tmp_file"`
}

// handleCrop cuts one size out of an uploaded image. The thumb is written
// under its temporary name and stays detached until a form saves it.
func (s *Server) handleCrop(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ImageID int64  `json:"image_id"`
		Size    string `json:"size"`
		X       int    `json:"x"`
		Y       int    `json:"y"`
		W       int    `json:"w"`
		H       int    `json:"h"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Size == "" || strings.ContainsAny(payload.Size, `/\.`) {
		RespondWithError(w, http.StatusBadRequest, "Invalid size name")
		return
	}
	if payload.X < 0 || payload.Y < 0 || payload.W <= 0 || payload.H <= 0 {
		RespondWithError(w, http.StatusBadRequest, "Crop region must have a positive size inside the image")
		return
	}

	img, err := s.store.GetImageByID(payload.ImageID)
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(w, http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to look up image")
		return
	}

	size, err := s.cropTarget(img, payload.Size)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to look up size")
		return
	}
	if size == nil {
		RespondWithError(w, http.StatusBadRequest, "Unknown size "+payload.Size)
		return
	}
	if payload.W < size.MinWidth || payload.H < size.MinHeight {
		RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("Crop region is smaller than the minimum %dx%d", size.MinWidth, size.MinHeight))
		return
	}

	src, err := s.app.Media().Path(img.Path)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Invalid image path")
		return
	}
	dst, err := s.app.Media().Path(img.ThumbPath(size.Slug, true))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid size name")
		return
	}

	region := image.Rect(payload.X, payload.Y, payload.X+payload.W, payload.Y+payload.H)
	dims, err := cropper.Crop(src, dst, cropper.Request{
		Region: region,
		Width:  uint(size.Width),
		Height: uint(size.Height),
	})
	if err != nil {
		log.Printf("Failed to crop image %d to %s: %v", img.ID, size.Slug, err)
		RespondWithError(w, http.StatusBadRequest, "Failed to crop image")
		return
	}

	thumb, err := s.store.SaveCrop(&models.Thumb{
		ImageID: img.ID,
		Name:    size.Slug,
		Width:   dims.X,
		Height:  dims.Y,
		CropX:   payload.X,
		CropY:   payload.Y,
		CropW:   payload.W,
		CropH:   payload.H,
	})
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save thumb")
		return
	}

	RespondWithJSON(w, http.StatusOK, cropResponse{
		Thumb:     thumb,
		URL:       s.app.Media().ThumbURL(img, thumb.Name, true),
		Temporary: thumb.IsTemporary(),
	})
}

// cropTarget finds the size called name: in the image's size set when it
// has one, otherwise among the configured default sizes. It returns nil for
// an unknown name.
func (s *Server) cropTarget(img *models.Image, name string) (*models.Size, error) {
	if img.SizeSetID != nil {
		ss, err := s.store.GetSizeSetByID(*img.SizeSetID)
		switch {
		case err == nil:
			return ss.SizeBySlug(name), nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}
	c, ok := s.app.Config().Sizes.Default[name]
	if !ok {
		return nil, nil
	}
	return &models.Size{
		Name:        name,
		Slug:        name,
		Width:       c.Width,
		Height:      c.Height,
		MinWidth:    c.MinWidth,
		MinHeight:   c.MinHeight,
		AspectRatio: c.AspectRatio,
	}, nil
}
