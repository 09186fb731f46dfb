package forms

import (
	"errors"
	"html/template"
	"strconv"

	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/render"
	"github.com/vrsandeep/cropduster/internal/store"
	"github.com/vrsandeep/cropduster/internal/urls"
)

// AdminInlineTemplate is the default template of AdminHiddenWidget.
const AdminInlineTemplate = "admin/inline.html"

// HiddenWidgetStore is what AdminHiddenWidget reads.
type HiddenWidgetStore interface {
	SizeSetStore
	GetImageByID(id int64) (*models.Image, error)
}

// HiddenWidgetContext is the data handed to the admin inline template.
type HiddenWidgetContext struct {
	Name          string
	Value         string
	Image         *models.Image
	SizeSet       *models.SizeSet
	StaticURL     string
	CropdusterURL string
	Input         template.HTML
	Attrs         map[string]string
	ThumbnailURLs []string
}

// AdminHiddenWidget carries an image ID in a hidden input and renders a
// preview panel of the image's thumbnails next to it.
type AdminHiddenWidget struct {
	SizeSet   *models.SizeSet
	Template  string
	StaticURL string

	store    HiddenWidgetStore
	media    MediaURLs
	renderer Renderer
	urls     urls.Reverser
}

// NewAdminHiddenWidget looks up the size set by slug. An unknown slug leaves
// SizeSet nil. An empty template name selects AdminInlineTemplate.
func NewAdminHiddenWidget(st HiddenWidgetStore, media MediaURLs, renderer Renderer, rev urls.Reverser, sizeSetSlug, tmpl, staticURL string) (*AdminHiddenWidget, error) {
	if tmpl == "" {
		tmpl = AdminInlineTemplate
	}
	w := &AdminHiddenWidget{
		Template:  tmpl,
		StaticURL: staticURL,
		store:     st,
		media:     media,
		renderer:  renderer,
		urls:      rev,
	}
	ss, err := st.GetSizeSetBySlug(sizeSetSlug)
	switch {
	case err == nil:
		w.SizeSet = ss
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	return w, nil
}

// ThumbnailURLs returns one thumbnail URL per ratio-unique size of the
// image's size set, or of the widget's size set when the image has none.
func (w *AdminHiddenWidget) ThumbnailURLs(image *models.Image) ([]string, error) {
	out := make([]string, 0)
	if image == nil {
		return out, nil
	}

	sizeSet := w.SizeSet
	if image.SizeSetID != nil {
		ss, err := w.store.GetSizeSetByID(*image.SizeSetID)
		switch {
		case err == nil:
			sizeSet = ss
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	for _, size := range sizeSet.UniqueRatios() {
		out = append(out, w.media.ThumbURL(image, size.Slug, false))
	}
	return out, nil
}

// Render renders the hidden input and the preview panel. A value that names
// no image renders the panel without an image.
func (w *AdminHiddenWidget) Render(name, value string, attrs map[string]string) (template.HTML, error) {
	attrs = cloneAttrs(attrs)
	if _, ok := attrs["class"]; !ok {
		attrs["class"] = "cropduster"
	}

	cropdusterURL, err := w.urls.Reverse(urls.Upload)
	if err != nil {
		return "", err
	}

	inputAttrs := cloneAttrs(attrs)
	inputAttrs["type"] = "hidden"
	inputAttrs["name"] = name
	if value != "" {
		inputAttrs["value"] = value
	}
	input := template.HTML("<input" + string(render.Attrs(inputAttrs)) + ">")

	var image *models.Image
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		image, err = w.store.GetImageByID(id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
	}

	thumbnailURLs, err := w.ThumbnailURLs(image)
	if err != nil {
		return "", err
	}

	return w.renderer.RenderHTML(w.Template, &HiddenWidgetContext{
		Name:          name,
		Value:         value,
		Image:         image,
		SizeSet:       w.SizeSet,
		StaticURL:     w.StaticURL,
		CropdusterURL: cropdusterURL,
		Input:         input,
		Attrs:         attrs,
		ThumbnailURLs: thumbnailURLs,
	})
}
