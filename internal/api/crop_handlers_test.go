package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/cropduster/internal/models"
	"github.com/vrsandeep/cropduster/internal/testutil"
)

type uploadResult struct {
	ID      int64   `json:"id"`
	URL     string  `json:"url"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	SizeSet *string `json:"size_set"`
}

func TestUploadHandler(t *testing.T) {
	server, app := setupTestServer(t)
	cookie := adminCookie(t, server)
	testutil.CreateSizeSet(t, server.Store(), "article", &models.Size{Name: "Square", Slug: "square", Width: 20, Height: 20})

	t.Run("Valid upload", func(t *testing.T) {
		rr := serve(server, uploadRequest(t, pngBytes(t, 40, 30), map[string]string{"size_set": "article"}), cookie)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var res uploadResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		assert.Equal(t, 40, res.Width)
		assert.Equal(t, 30, res.Height)
		require.NotNil(t, res.SizeSet)
		assert.Equal(t, "article", *res.SizeSet)
		assert.Regexp(t, `^/media/uploads/[0-9a-f-]{36}/original\.png$`, res.URL)

		img, err := server.Store().GetImageByID(res.ID)
		require.NoError(t, err)
		assert.True(t, img.Parent.IsZero(), "uploads are not attached until a form is saved")
		p, err := app.Media().Path(img.Path)
		require.NoError(t, err)
		assert.FileExists(t, p)

		req, _ := http.NewRequest("GET", res.URL, nil)
		assert.Equal(t, http.StatusOK, serve(server, req, nil).Code, "the original is served from the media URL")
	})

	t.Run("Without size set", func(t *testing.T) {
		rr := serve(server, uploadRequest(t, pngBytes(t, 10, 10), nil), cookie)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"size_set":null`)
	})

	cases := []struct {
		name    string
		content []byte
		fields  map[string]string
		status  int
	}{
		{"Missing file", nil, nil, http.StatusBadRequest},
		{"Not an image", []byte("plain text"), nil, http.StatusBadRequest},
		{"Unknown size set", pngBytes(t, 10, 10), map[string]string{"size_set": "nope"}, http.StatusBadRequest},
		{"Too large", bytes.Repeat([]byte{0}, 2<<20), nil, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(server, uploadRequest(t, tc.content, tc.fields), cookie)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}

func TestRatioHandler(t *testing.T) {
	server, _ := setupTestServer(t)
	cookie := adminCookie(t, server)
	testutil.CreateSizeSet(t, server.Store(), "article",
		&models.Size{Name: "Large", Slug: "large", Width: 1600, Height: 900},
		&models.Size{Name: "Free", Slug: "free", MinWidth: 100, MinHeight: 100},
	)

	t.Run("With source dimensions", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/cropduster/ratio/?size_set=article&width=1000&height=1000", nil)
		rr := serve(server, req, cookie)
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			SizeSet string `json:"size_set"`
			Sizes   []struct {
				Slug        string  `json:"slug"`
				AspectRatio float64 `json:"aspect_ratio"`
				Fits        *bool   `json:"fits"`
			} `json:"sizes"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "article", body.SizeSet)
		require.Len(t, body.Sizes, 2)
		assert.Equal(t, "large", body.Sizes[0].Slug)
		assert.InDelta(t, 1.7778, body.Sizes[0].AspectRatio, 0.001)
		require.NotNil(t, body.Sizes[0].Fits)
		assert.False(t, *body.Sizes[0].Fits)
		require.NotNil(t, body.Sizes[1].Fits)
		assert.True(t, *body.Sizes[1].Fits)
	})

	t.Run("Without source dimensions", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/cropduster/ratio/?size_set=article", nil)
		rr := serve(server, req, cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "fits")
	})

	for query, status := range map[string]int{
		"":                           http.StatusBadRequest,
		"size_set=article&width=abc": http.StatusBadRequest,
		"size_set=article&height=-5": http.StatusBadRequest,
		"size_set=missing":           http.StatusNotFound,
		"size_set=missing&width=10":  http.StatusNotFound,
	} {
		req, _ := http.NewRequest("GET", "/cropduster/ratio/?"+query, nil)
		assert.Equal(t, status, serve(server, req, cookie).Code, query)
	}
}

func TestCropHandler(t *testing.T) {
	server, app := setupTestServer(t)
	cookie := adminCookie(t, server)
	testutil.CreateSizeSet(t, server.Store(), "article",
		&models.Size{Name: "Square", Slug: "square", Width: 20, Height: 20, MinWidth: 10, MinHeight: 10},
	)

	rr := serve(server, uploadRequest(t, pngBytes(t, 40, 30), map[string]string{"size_set": "article"}), cookie)
	require.Equal(t, http.StatusCreated, rr.Code)
	var uploaded uploadResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploaded))

	crop := func(body string) *http.Request {
		req, _ := http.NewRequest("POST", "/cropduster/crop/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("Valid crop", func(t *testing.T) {
		rr := serve(server, crop(fmt.Sprintf(`{"image_id":%d,"size":"square","x":5,"y":0,"w":30,"h":30}`, uploaded.ID)), cookie)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var res struct {
			ID        int64  `json:"id"`
			Name      string `json:"name"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			CropX     int    `json:"crop_x"`
			URL       string `json:"url"`
			Temporary bool   `json:"tmp_file"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		assert.Equal(t, "square", res.Name)
		assert.Equal(t, 20, res.Width)
		assert.Equal(t, 20, res.Height)
		assert.Equal(t, 5, res.CropX)
		assert.True(t, res.Temporary)
		assert.Regexp(t, `/square_tmp\.png$`, res.URL)

		img, err := server.Store().GetImageByID(uploaded.ID)
		require.NoError(t, err)
		p, err := app.Media().Path(img.ThumbPath("square", true))
		require.NoError(t, err)
		assert.FileExists(t, p)
	})

	t.Run("Falls back to default sizes", func(t *testing.T) {
		rr := serve(server, uploadRequest(t, pngBytes(t, 200, 200), nil), cookie)
		require.Equal(t, http.StatusCreated, rr.Code)
		var plain uploadResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plain))

		rr = serve(server, crop(fmt.Sprintf(`{"image_id":%d,"size":"default","x":0,"y":0,"w":150,"h":150}`, plain.ID)), cookie)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), `"width":100`)
	})

	cases := map[string]struct {
		body   string
		status int
	}{
		"Malformed JSON":    {`{`, http.StatusBadRequest},
		"Unknown image":     {`{"image_id":9999,"size":"square","x":0,"y":0,"w":10,"h":10}`, http.StatusNotFound},
		"Unknown size":      {fmt.Sprintf(`{"image_id":%d,"size":"huge","x":0,"y":0,"w":10,"h":10}`, uploaded.ID), http.StatusBadRequest},
		"Path in size name": {fmt.Sprintf(`{"image_id":%d,"size":"../x","x":0,"y":0,"w":10,"h":10}`, uploaded.ID), http.StatusBadRequest},
		"Empty region":      {fmt.Sprintf(`{"image_id":%d,"size":"square","x":0,"y":0,"w":0,"h":10}`, uploaded.ID), http.StatusBadRequest},
		"Below minimum":     {fmt.Sprintf(`{"image_id":%d,"size":"square","x":0,"y":0,"w":5,"h":5}`, uploaded.ID), http.StatusBadRequest},
		"Outside the image": {fmt.Sprintf(`{"image_id":%d,"size":"square","x":100,"y":100,"w":20,"h":20}`, uploaded.ID), http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.status, serve(server, crop(tc.body), cookie).Code)
		})
	}
}

func TestStaticAndMediaRoutes(t *testing.T) {
	server, _ := setupTestServer(t)

	req, _ := http.NewRequest("GET", "/cropduster/_static/cropduster/css/cropduster.css", nil)
	assert.Equal(t, http.StatusOK, serve(server, req, nil).Code)

	req, _ = http.NewRequest("GET", "/cropduster/_static/cropduster/css/missing.css", nil)
	assert.Equal(t, http.StatusNotFound, serve(server, req, nil).Code)

	req, _ = http.NewRequest("GET", "/media/", nil)
	assert.Equal(t, http.StatusNotFound, serve(server, req, nil).Code, "directories are not listed")
}
