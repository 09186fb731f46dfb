package forms

import (
	"errors"
	"html/template"
	"strconv"

	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/store"
	"github.com/vrsandeep/cropduster/internal/urls"
)

// ImageFieldTemplate is the default template of ImageFieldWidget.
const ImageFieldTemplate = "cropduster/custom_field.html"

// BoundField carries what the surrounding form knows about the field being
// rendered.
type BoundField struct {
	Instance *models.Image
	// Parent is used for sizes when there is no instance yet.
	Parent *models.ParentRef
	Errors []string
}

// ThumbURL is one entry of the ordered size name → URL mapping.
type ThumbURL struct {
	Name string
	URL  string
}

// ImageFieldContext is the data handed to the image field template.
type ImageFieldContext struct {
	Name      string
	Value     string
	Attrs     map[string]string
	Instance  *models.Image
	ImageURL  string
	Sizes     template.JS
	Thumbs    []ThumbURL
	Errors    []string
	UploadURL string
	CropURL   string
	StaticURL string
}

// ImageFieldWidget renders the edit control of an image field: the current
// image, its existing thumbnails and the size configuration for the
// cropping script.
type ImageFieldWidget struct {
	Sizes     SizesSource
	Template  string
	StaticURL string

	store    ImageStore
	media    MediaURLs
	renderer Renderer
	urls     urls.Reverser
}

// NewImageFieldWidget returns a widget using the default template.
func NewImageFieldWidget(st ImageStore, media MediaURLs, renderer Renderer, rev urls.Reverser, sizes SizesSource) *ImageFieldWidget {
	return &ImageFieldWidget{
		Sizes:    sizes,
		Template: ImageFieldTemplate,
		store:    st,
		media:    media,
		renderer: renderer,
		urls:     rev,
	}
}

// GetContextData builds the template context for the field. An empty value
// or an image that cannot be found yields empty Thumbs, not an error.
func (w *ImageFieldWidget) GetContextData(name, value string, attrs map[string]string, bound *BoundField) (*ImageFieldContext, error) {
	ctx := &ImageFieldContext{
		Name:      name,
		Value:     value,
		Attrs:     cloneAttrs(attrs),
		Thumbs:    make([]ThumbURL, 0),
		StaticURL: w.StaticURL,
	}
	if bound != nil {
		ctx.Instance = bound.Instance
		ctx.Errors = bound.Errors
	}
	if ctx.Instance == nil && value != "" {
		instance, err := w.lookupImage(value)
		if err != nil {
			return nil, err
		}
		ctx.Instance = instance
	}

	parent := ctx.Instance.ContentObject()
	if parent == nil && bound != nil {
		parent = bound.Parent
	}
	sizes, err := encodeSizes(w.Sizes, parent)
	if err != nil {
		return nil, err
	}
	ctx.Sizes = sizes

	if value != "" && ctx.Instance != nil {
		ctx.ImageURL = w.media.URL(ctx.Instance.Path)
		thumbs, err := w.store.ListImageThumbsByWidth(ctx.Instance.ID)
		if err != nil {
			return nil, err
		}
		for _, thumb := range thumbs {
			ctx.Thumbs = append(ctx.Thumbs, ThumbURL{
				Name: thumb.Name,
				URL:  w.media.ThumbURL(ctx.Instance, thumb.Name, false),
			})
		}
	}

	if w.urls != nil {
		// Both endpoints are optional for rendering; a missing route leaves
		// the URL empty.
		ctx.UploadURL, _ = w.urls.Reverse(urls.Upload)
		ctx.CropURL, _ = w.urls.Reverse(urls.Crop)
	}
	return ctx, nil
}

// Render executes the widget template.
func (w *ImageFieldWidget) Render(name, value string, attrs map[string]string, bound *BoundField) (template.HTML, error) {
	ctx, err := w.GetContextData(name, value, attrs, bound)
	if err != nil {
		return "", err
	}
	return w.renderer.RenderHTML(w.Template, ctx)
}

// lookupImage resolves value as an image ID. Malformed IDs and misses return
// a nil image.
func (w *ImageFieldWidget) lookupImage(value string) (*models.Image, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, nil
	}
	img, err := w.store.GetImageByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return img, err
}
