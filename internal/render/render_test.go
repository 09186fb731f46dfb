package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer(t *testing.T) {
	base := fstest.MapFS{
		"widgets/hello.html": {Data: []byte(`<p{{attrs .Attrs}}>Hello {{.Name}}</p>`)},
		"widgets/other.html": {Data: []byte(`embedded`)},
		"README.txt":         {Data: []byte(`{{ not parsed`)},
	}

	t.Run("Renders by relative path with escaping", func(t *testing.T) {
		r, err := New(base, "")
		require.NoError(t, err)

		out, err := r.RenderHTML("widgets/hello.html", map[string]interface{}{
			"Name":  "<b>you</b>",
			"Attrs": map[string]string{"id": "x", "class": `a"b`},
		})
		require.NoError(t, err)
		assert.Equal(t, `<p class="a&#34;b" id="x">Hello &lt;b&gt;you&lt;/b&gt;</p>`, string(out))

		_, err = r.RenderHTML("missing.html", nil)
		assert.Error(t, err)
	})

	t.Run("Override directory wins and reloads", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "widgets"), 0o755))
		override := filepath.Join(dir, "widgets", "other.html")
		require.NoError(t, os.WriteFile(override, []byte("override v1"), 0o644))

		r, err := New(base, dir)
		require.NoError(t, err)
		out, err := r.RenderHTML("widgets/other.html", nil)
		require.NoError(t, err)
		assert.Equal(t, "override v1", string(out))

		stop, err := r.Watch()
		require.NoError(t, err)
		defer stop()

		require.NoError(t, os.WriteFile(override, []byte("override v2"), 0o644))
		assert.Eventually(t, func() bool {
			out, err := r.RenderHTML("widgets/other.html", nil)
			return err == nil && strings.Contains(string(out), "v2")
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("Broken template keeps the previous set", func(t *testing.T) {
		dir := t.TempDir()
		r, err := New(base, dir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.html"), []byte("{{ .Oops"), 0o644))
		assert.Error(t, r.Reload())

		out, err := r.RenderHTML("widgets/other.html", nil)
		require.NoError(t, err)
		assert.Equal(t, "embedded", string(out))
	})
}

func TestAttrsEmpty(t *testing.T) {
	assert.Equal(t, "", string(Attrs(nil)))
}
