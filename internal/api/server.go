// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vrsandeep/cropduster/internal/assets"
	"github.com/vrsandeep/cropduster/internal/core"
	"github.com/vrsandeep/cropduster/internal/forms"
	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/render"
	"github.com/vrsandeep/cropduster/internal/store"
	"github.com/vrsandeep/cropduster/internal/urls"
)

// Patterns of the named routes, relative to the configured prefix.
const (
	staticPattern = "/_static/*"
	uploadPattern = "/upload/"
	ratioPattern  = "/ratio/"
	cropPattern   = "/crop/"
)

// Server holds the dependencies for our API.
type Server struct {
	app      *core.App
	db       *sql.DB
	store    *store.Store
	renderer *render.Renderer
	urls     *urls.Resolver
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Renderer returns the template renderer.
func (s *Server) Renderer() *render.Renderer {
	return s.renderer
}

// NewServer creates a new Server instance. Templates are parsed here so a
// broken override directory fails at startup rather than per request.
func NewServer(app *core.App) (*Server, error) {
	templates, err := fs.Sub(assets.TemplatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	renderer, err := render.New(templates, app.Config().Templates.OverrideDir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	prefix := app.Config().URLPrefix
	if prefix == "" {
		prefix = "/cropduster"
	}
	resolver := urls.NewResolver(prefix)
	resolver.Register(urls.Static, staticPattern)
	resolver.Register(urls.Upload, uploadPattern)
	resolver.Register(urls.Ratio, ratioPattern)
	resolver.Register(urls.Crop, cropPattern)

	return &Server{
		app:      app,
		db:       app.DB(),
		store:    store.New(app.DB()),
		renderer: renderer,
		urls:     resolver,
	}, nil
}

// staticURL is the base URL of the embedded css and js.
func (s *Server) staticURL() string {
	if u := s.app.Config().StaticURL; u != "" {
		return u
	}
	return s.urls.MustReverse(urls.Static)
}

// sizesFor resolves the crop sizes of a parent: the size set named after
// its content type, or the configured defaults.
func (s *Server) sizesFor() forms.SizesSource {
	return forms.ComputedSizes(func(parent *models.ParentRef) (forms.SizeConfig, error) {
		if parent != nil {
			ss, err := s.store.GetSizeSetBySlug(parent.ContentType)
			switch {
			case err == nil:
				return forms.SizeConfigFromSet(ss), nil
			case !errors.Is(err, store.ErrNotFound):
				return nil, err
			}
		}
		defaults := s.app.Config().Sizes.Default
		if len(defaults) == 0 {
			return nil, nil
		}
		cfg := make(forms.SizeConfig, len(defaults))
		for name, c := range defaults {
			cfg[name] = forms.SizeConstraint(c)
		}
		return cfg, nil
	})
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/users/login", s.handleLogin)
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/users/logout", s.handleLogout)
		r.Get("/api/users/me", s.handleGetMe)

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(s.AdminOnlyMiddleware)

			r.Get("/jobs/status", s.handleGetAdminJobsStatus)
			r.Post("/jobs/run", s.handleRunAdminJob)

			r.Get("/users", s.handleAdminListUsers)
			r.Post("/users", s.handleAdminCreateUser)
			r.Delete("/users/{userID}", s.handleAdminDeleteUser)

			r.Get("/size-sets", s.handleListSizeSets)
			r.Put("/size-sets/{slug}", s.handleSaveSizeSet)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLoginForm)

		r.Group(func(r chi.Router) {
			r.Use(s.PageAuthMiddleware)
			r.Use(s.PageAdminOnlyMiddleware)

			r.Get("/parents/{contentType}/{objectID}/images", s.handleImagesPage)
			r.Post("/parents/{contentType}/{objectID}/images", s.handleImagesPage)
			r.Get("/widgets/hidden", s.handleHiddenWidget)
		})
	})

	staticFS, err := fs.Sub(assets.MediaFS, "media")
	if err != nil {
		log.Fatalf("Failed to create static sub-filesystem: %v", err)
	}

	r.Route(s.urls.Prefix(), func(r chi.Router) {
		r.Handle(staticPattern, http.StripPrefix(s.urls.Prefix()+strings.TrimSuffix(staticPattern, "*"), http.FileServer(http.FS(staticFS))))

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Use(s.AdminOnlyMiddleware)

			r.Post(uploadPattern, s.handleUpload)
			r.Get(ratioPattern, s.handleRatio)
			r.Post(cropPattern, s.handleCrop)
		})
	})

	mediaURL := s.app.Config().Media.URL
	if mediaURL == "" {
		mediaURL = "/media/"
	}
	FileServer(r, strings.TrimSuffix(mediaURL, "/")+"/", http.Dir(s.app.Media().Root()))

	return r
}

// FileServer conveniently sets up a static file server that doesn't list directories.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	fs := http.StripPrefix(path, http.FileServer(noDirFS{root}))
	r.Get(path+"*", func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	})
}

// noDirFS hides directories so the file server never renders listings.
type noDirFS struct {
	http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	if stat, err := f.Stat(); err == nil && stat.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
