// Package urls keeps the named routes of the cropduster endpoints so widgets
// can link to them without knowing where the router mounted them.
package urls

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Route names.
const (
	Static = "cropduster-static"
	Upload = "cropduster-upload"
	Ratio  = "cropduster-ratio"
	Crop   = "cropduster-crop"
)

// Reverser turns a route name back into a URL path.
type Reverser interface {
	Reverse(name string, params ...string) (string, error)
}

// Resolver is a registry of named route patterns under a common prefix.
// Patterns use chi's "{param}" placeholders.
type Resolver struct {
	mu     sync.RWMutex
	prefix string
	routes map[string]string
}

// NewResolver returns an empty Resolver whose routes live under prefix.
func NewResolver(prefix string) *Resolver {
	return &Resolver{
		prefix: strings.TrimSuffix(prefix, "/"),
		routes: make(map[string]string),
	}
}

// Prefix returns the mount prefix.
func (r *Resolver) Prefix() string {
	return r.prefix
}

// Register names a pattern relative to the prefix and returns the pattern,
// so it can be passed straight to the router.
func (r *Resolver) Register(name, pattern string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = pattern
	return pattern
}

// Reverse builds the path of a named route. params are consumed in order by
// the pattern's placeholders; a trailing "/*" is dropped.
func (r *Resolver) Reverse(name string, params ...string) (string, error) {
	r.mu.RLock()
	pattern, ok := r.routes[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no route named %q", name)
	}

	var b strings.Builder
	rest := strings.TrimSuffix(pattern, "*")
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("malformed pattern %q for route %q", pattern, name)
		}
		if len(params) == 0 {
			return "", fmt.Errorf("missing parameter %s for route %q", rest[open:open+end+1], name)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(params[0]))
		params = params[1:]
		rest = rest[open+end+1:]
	}
	if len(params) > 0 {
		return "", fmt.Errorf("too many parameters for route %q", name)
	}
	return r.prefix + b.String(), nil
}

// MustReverse is Reverse for routes known to exist; it panics otherwise.
func (r *Resolver) MustReverse(name string, params ...string) string {
	u, err := r.Reverse(name, params...)
	if err != nil {
		panic(err)
	}
	return u
}
