package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/testutil"
)

func TestAdminHiddenWidget(t *testing.T) {
	env := setupEnv(t)
	testutil.CreateSizeSet(t, env.store, "article",
		&models.Size{Name: "Large", Slug: "large", Width: 1600, Height: 900},
		&models.Size{Name: "Medium", Slug: "medium", Width: 800, Height: 450},
		&models.Size{Name: "Square", Slug: "square", Width: 300, Height: 300},
	)
	gallery := testutil.CreateSizeSet(t, env.store, "gallery",
		&models.Size{Name: "Wide", Slug: "wide", Width: 2000, Height: 500},
	)

	t.Run("Unknown size set", func(t *testing.T) {
		w, err := NewAdminHiddenWidget(env.store, env.media, env.renderer, env.urls, "missing", "", "/static/")
		require.NoError(t, err)
		assert.Nil(t, w.SizeSet)
		assert.Equal(t, AdminInlineTemplate, w.Template)

		out, err := w.Render("image", "", nil)
		require.NoError(t, err)
		doc := parseHTML(t, string(out))
		assert.Equal(t, 1, doc.Find("p.cropduster-empty").Length())
		input := doc.Find(`input[type="hidden"][name="image"]`)
		assert.Equal(t, "cropduster", input.AttrOr("class", ""))
		_, hasValue := input.Attr("value")
		assert.False(t, hasValue)
	})

	w, err := NewAdminHiddenWidget(env.store, env.media, env.renderer, env.urls, "article", "", "/static/")
	require.NoError(t, err)
	require.NotNil(t, w.SizeSet)

	t.Run("Thumbnail URLs skip duplicate ratios", func(t *testing.T) {
		img := testutil.CreateImage(t, env.store, models.ParentRef{ContentType: "article", ObjectID: 1}, "uploads/h/original.jpg")
		urls, err := w.ThumbnailURLs(img)
		require.NoError(t, err)
		assert.Equal(t, []string{"/media/uploads/h/large.jpg", "/media/uploads/h/square.jpg"}, urls)

		urls, err = w.ThumbnailURLs(nil)
		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("Image size set wins", func(t *testing.T) {
		img, err := env.store.CreateImage(&models.Image{Path: "uploads/g/original.jpg", SizeSetID: &gallery.ID})
		require.NoError(t, err)
		urls, err := w.ThumbnailURLs(img)
		require.NoError(t, err)
		assert.Equal(t, []string{"/media/uploads/g/wide.jpg"}, urls)
	})

	t.Run("Render with image", func(t *testing.T) {
		img := testutil.CreateImage(t, env.store, models.ParentRef{ContentType: "article", ObjectID: 1}, "uploads/r/original.jpg")
		out, err := w.Render("image", itoa(img.ID), map[string]string{"class": "custom"})
		require.NoError(t, err)

		doc := parseHTML(t, string(out))
		input := doc.Find(`input[type="hidden"]`)
		assert.Equal(t, itoa(img.ID), input.AttrOr("value", ""))
		assert.Equal(t, "custom", input.AttrOr("class", ""))
		assert.Equal(t, 2, doc.Find(".cropduster-preview img").Length())
		assert.Equal(t, "/cropduster/upload/", doc.Find(".cropduster-inline").AttrOr("data-upload-url", ""))
		assert.Equal(t, "article", doc.Find(".cropduster-inline").AttrOr("data-size-set", ""))
		assert.Equal(t, "/static/cropduster/css/cropduster.css", doc.Find("link").AttrOr("href", ""))
	})

	t.Run("Render with unknown image", func(t *testing.T) {
		for _, value := range []string{"99999", "abc"} {
			out, err := w.Render("image", value, nil)
			require.NoError(t, err, value)
			assert.Equal(t, 1, parseHTML(t, string(out)).Find("p.cropduster-empty").Length(), value)
		}
	})
}
