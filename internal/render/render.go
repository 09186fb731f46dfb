// Package render loads the HTML templates of the widgets and admin pages.
// Templates are named by their path relative to the templates root, e.g.
// "cropduster/custom_field.html".
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Renderer executes named templates. It is safe for concurrent use.
type Renderer struct {
	mu          sync.RWMutex
	base        fs.FS
	overrideDir string
	tmpl        *template.Template
}

// New parses every *.html file of base. When overrideDir is not empty, files
// found there replace the embedded ones of the same name.
func New(base fs.FS, overrideDir string) (*Renderer, error) {
	r := &Renderer{base: base, overrideDir: overrideDir}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses all templates. On error the previous set stays active.
func (r *Renderer) Reload() error {
	tmpl := template.New("").Funcs(funcs)
	if err := parseInto(tmpl, r.base); err != nil {
		return err
	}
	if r.overrideDir != "" {
		if err := parseInto(tmpl, os.DirFS(r.overrideDir)); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()
	return nil
}

func parseInto(tmpl *template.Template, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		if _, err := tmpl.New(path).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", path, err)
		}
		return nil
	})
}

// Render executes the named template into w.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	t := tmpl.Lookup(name)
	if t == nil {
		return fmt.Errorf("template %q not found", name)
	}
	return t.Execute(w, data)
}

// RenderHTML executes the named template and returns the markup, for
// embedding one rendered fragment into another template.
func (r *Renderer) RenderHTML(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Watch reloads the templates whenever a file in the override directory
// changes. It returns a stop function. Without an override directory it
// does nothing.
func (r *Renderer) Watch() (func() error, error) {
	if r.overrideDir == "" {
		return func() error { return nil }, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = filepath.WalkDir(r.overrideDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	log.Printf("Watching template overrides in %s", r.overrideDir)
	go func() {
		// Editors emit bursts of events for one save.
		var debounce *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, func() {
					if err := r.Reload(); err != nil {
						log.Printf("Warning: template reload failed: %v", err)
						return
					}
					log.Println("Templates reloaded.")
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Template watcher error: %v", err)
			}
		}
	}()
	return watcher.Close, nil
}
