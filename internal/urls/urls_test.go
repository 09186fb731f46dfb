package urls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverse(t *testing.T) {
	r := NewResolver("/cropduster/")
	assert.Equal(t, "/upload/", r.Register(Upload, "/upload/"))
	r.Register(Static, "/_static/*")
	r.Register("image-thumb", "/images/{imageID}/thumbs/{name}")

	u, err := r.Reverse(Upload)
	require.NoError(t, err)
	assert.Equal(t, "/cropduster/upload/", u)

	assert.Equal(t, "/cropduster/_static/", r.MustReverse(Static))

	u, err = r.Reverse("image-thumb", "4", "large size")
	require.NoError(t, err)
	assert.Equal(t, "/cropduster/images/4/thumbs/large%20size", u)

	_, err = r.Reverse("image-thumb", "4")
	assert.Error(t, err, "missing parameter")

	_, err = r.Reverse(Upload, "extra")
	assert.Error(t, err, "too many parameters")

	_, err = r.Reverse(Ratio)
	assert.Error(t, err, "unregistered route")

	assert.Panics(t, func() { r.MustReverse(Crop) })
}
