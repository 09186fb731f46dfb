package forms

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/vrsandeep/cropduster/internal/assets"
	"github.com/vrsandeep/cropduster/internal/media"
	"github.com/vrsandeep/cropduster/internal/render"
	"github.com/vrsandeep/cropduster/internal/store"
	"github.com/vrsandeep/cropduster/internal/testutil"
	"github.com/vrsandeep/cropduster/internal/urls"
)

type testEnv struct {
	store    *store.Store
	media    *media.Storage
	renderer *render.Renderer
	urls     *urls.Resolver
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	templates, err := fs.Sub(assets.TemplatesFS, "templates")
	if err != nil {
		t.Fatalf("Failed to open embedded templates: %v", err)
	}
	renderer, err := render.New(templates, "")
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}
	resolver := urls.NewResolver("/cropduster")
	resolver.Register(urls.Upload, "/upload/")
	resolver.Register(urls.Crop, "/crop/")

	return &testEnv{
		store:    store.New(testutil.SetupTestDB(t)),
		media:    media.New(t.TempDir(), "/media/"),
		renderer: renderer,
		urls:     resolver,
	}
}

func parseHTML(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("Failed to parse rendered HTML: %v", err)
	}
	return doc
}
