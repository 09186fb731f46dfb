package api_test

import (
	"bytes"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/vrsandeep/cropduster/internal/api"
	"github.com/vrsandeep/cropduster/internal/auth"
	"github.com/vrsandeep/cropduster/internal/config"
	"github.com/vrsandeep/cropduster/internal/core"
	"github.com/vrsandeep/cropduster/internal/testutil"
)

// setupTestServer builds an api.Server over an in-memory database and a
// temporary media root.
func setupTestServer(t *testing.T) (*api.Server, *core.App) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{URLPrefix: "/cropduster", StaticURL: "/cropduster/_static/"}
	cfg.Media.Root = t.TempDir()
	cfg.Media.URL = "/media/"
	cfg.Upload.MaxSize = 1 << 20
	cfg.Cleanup.MaxAge = 24
	cfg.Sizes.Default = map[string]config.SizeConstraint{"default": {Width: 100, Height: 100}}

	app := core.NewApp(cfg, db)
	server, err := api.NewServer(app)
	if err != nil {
		t.Fatalf("Failed to create test server: %v", err)
	}
	return server, app
}

// getAuthCookie creates a user, logs them in, and returns a valid session cookie.
func getAuthCookie(t *testing.T, s *api.Server, username, password, role string) *http.Cookie {
	t.Helper()

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password for test user: %v", err)
	}
	if _, err := s.Store().CreateUser(username, passwordHash, role); err != nil {
		t.Fatalf("Failed to create test user '%s': %v", username, err)
	}

	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, _ := http.NewRequest("POST", "/api/users/login", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Login failed within test helper for user '%s': got status %d, want 200", username, rr.Code)
	}

	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "session_token" {
			return cookie
		}
	}
	t.Fatal("Failed to get session cookie after successful login for test user")
	return nil
}

func adminCookie(t *testing.T, s *api.Server) *http.Cookie {
	t.Helper()
	return getAuthCookie(t, s, "admin", "password", "admin")
}

// serve runs req through the router, authenticated with cookie when given.
func serve(s *api.Server, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

// pngBytes encodes a blank PNG of the given size.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(width, height, color.White), imaging.PNG); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// uploadRequest builds a multipart upload of content as the "image" field.
func uploadRequest(t *testing.T, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	if content != nil {
		part, err := writer.CreateFormFile("image", "upload.png")
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write(content)
	}
	writer.Close()

	req, _ := http.NewRequest("POST", "/cropduster/upload/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
