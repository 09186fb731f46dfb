package api

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vrsandeep/cropduster/internal/forms"
	"github.com/vrsandeep/cropduster/internal/models"
)

const imagesPageTemplate = "admin/images.html"

type imagesPage struct {
	Parent         models.ParentRef
	StaticURL      string
	Saved          int
	HasErrors      bool
	ManagementForm template.HTML
	Rows           []imageRow
}

type imageRow struct {
	Prefix          string
	ID              string
	ImageField      template.HTML
	ThumbsField     template.HTML
	Errors          map[string][]string
	Attribution     string
	AttributionLink string
	Caption         string
}

// handleImagesPage shows and processes the inline image formset of one
// parent object. A successful POST redirects back to the page.
func (s *Server) handleImagesPage(w http.ResponseWriter, r *http.Request) {
	objectID, err := strconv.ParseInt(chi.URLParam(r, "objectID"), 10, 64)
	if err != nil || objectID <= 0 {
		RespondWithError(w, http.StatusBadRequest, "Invalid object ID")
		return
	}
	parent := models.ParentRef{ContentType: chi.URLParam(r, "contentType"), ObjectID: objectID}

	var data url.Values
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		data = r.PostForm
	}

	formset, err := forms.NewImageInlineFormSet(s.store, parent, data)
	if errors.Is(err, forms.ErrManagementForm) {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("Failed to build image formset for %s %d: %v", parent.ContentType, parent.ObjectID, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to load images")
		return
	}

	page := &imagesPage{
		Parent:    parent,
		StaticURL: s.staticURL(),
	}
	page.Saved, _ = strconv.Atoi(r.URL.Query().Get("saved"))

	if formset.IsBound() {
		valid, err := formset.IsValid()
		if err != nil {
			log.Printf("Failed to validate image formset: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Failed to validate images")
			return
		}
		if valid {
			saved, err := formset.Save(s.app.Media())
			if err != nil {
				log.Printf("Failed to save image formset: %v", err)
				RespondWithError(w, http.StatusInternalServerError, "Failed to save images")
				return
			}
			http.Redirect(w, r, r.URL.Path+"?saved="+strconv.Itoa(len(saved)), http.StatusSeeOther)
			return
		}
		page.HasErrors = true
	}

	widget := forms.NewImageFieldWidget(s.store, s.app.Media(), s.renderer, s.urls, s.sizesFor())
	widget.StaticURL = page.StaticURL

	page.ManagementForm = formset.ManagementForm()
	for _, form := range formset.Forms {
		imageField, err := form.RenderImageField(widget, parent)
		if err != nil {
			log.Printf("Failed to render image field %s: %v", form.Prefix, err)
			RespondWithError(w, http.StatusInternalServerError, "Failed to render images")
			return
		}
		thumbsField, err := form.RenderThumbsField()
		if err != nil {
			log.Printf("Failed to render thumbs field %s: %v", form.Prefix, err)
			RespondWithError(w, http.StatusInternalServerError, "Failed to render images")
			return
		}
		page.Rows = append(page.Rows, imageRow{
			Prefix:          form.Prefix,
			ID:              form.Value("id"),
			ImageField:      imageField,
			ThumbsField:     thumbsField,
			Errors:          form.Errors,
			Attribution:     form.Value("attribution"),
			AttributionLink: form.Value("attribution_link"),
			Caption:         form.Value("caption"),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if formset.IsBound() {
		w.WriteHeader(http.StatusBadRequest)
	}
	if err := s.renderer.Render(w, imagesPageTemplate, page); err != nil {
		log.Printf("Failed to render %s: %v", imagesPageTemplate, err)
	}
}

// handleHiddenWidget renders the hidden-input admin widget on its own, for
// pages that embed it through an HTML fragment request.
func (s *Server) handleHiddenWidget(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		RespondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	widget, err := forms.NewAdminHiddenWidget(s.store, s.app.Media(), s.renderer, s.urls, q.Get("size_set"), "", s.staticURL())
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to look up size set")
		return
	}
	out, err := widget.Render(name, q.Get("value"), nil)
	if err != nil {
		log.Printf("Failed to render hidden widget: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to render widget")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out))
}
