package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/vrsandeep/cropduster/internal/auth"
)

const (
	sessionCookieName = "session_token"
	sessionLifetime   = 7 * 24 * time.Hour
	loginPageTemplate = "admin/login.html"
)

var errBadCredentials = errors.New("invalid username or password")

// startSession checks the credentials and sets the session cookie.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, username, password string) error {
	user, err := s.store.GetUserByUsername(username)
	if err != nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return errBadCredentials
	}

	token, err := s.store.CreateSession(user.ID)
	if err != nil {
		return err
	}
	setSessionCookie(w, r, token, time.Now().Add(sessionLifetime))
	return nil
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err := s.startSession(w, r, payload.Username, payload.Password)
	switch {
	case errors.Is(err, errBadCredentials):
		RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	case err != nil:
		RespondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.store.DeleteSession(cookie.Value)
	}
	setSessionCookie(w, r, "", time.Unix(0, 0))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}

type loginPage struct {
	Next      string
	Username  string
	Error     string
	StaticURL string
}

func (s *Server) renderLoginPage(w http.ResponseWriter, code int, page loginPage) {
	page.StaticURL = s.staticURL()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := s.renderer.Render(w, loginPageTemplate, page); err != nil {
		log.Printf("Failed to render login page: %v", err)
	}
}

// handleLoginPage shows the login form of the admin pages.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderLoginPage(w, http.StatusOK, loginPage{Next: safeRedirect(r.URL.Query().Get("next"))})
}

// handleLoginForm starts a session from the login form and returns to the
// page that asked for it.
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	page := loginPage{
		Next:     safeRedirect(r.PostForm.Get("next")),
		Username: r.PostForm.Get("username"),
	}

	err := s.startSession(w, r, page.Username, r.PostForm.Get("password"))
	switch {
	case errors.Is(err, errBadCredentials):
		page.Error = "Invalid username or password."
		s.renderLoginPage(w, http.StatusUnauthorized, page)
		return
	case err != nil:
		log.Printf("Failed to create session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, page.Next, http.StatusSeeOther)
}

// safeRedirect keeps only local paths so the login form cannot send users
// to another site.
func safeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "/"
	}
	return next
}
