package api

// Session and role checks. API routes answer with JSON errors, admin pages
// send browsers to the login form.

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vrsandeep/cropduster/internal/models"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey string

const userContextKey = contextKey("user")

const loginPagePath = "/admin/login"

// authFailure writes the response for a request that was turned away.
type authFailure func(w http.ResponseWriter, r *http.Request, code int, message string)

func jsonAuthFailure(w http.ResponseWriter, _ *http.Request, code int, message string) {
	RespondWithError(w, code, message)
}

// pageAuthFailure redirects anonymous visitors to the login form and
// remembers where they were going.
func pageAuthFailure(w http.ResponseWriter, r *http.Request, code int, message string) {
	if code == http.StatusUnauthorized {
		http.Redirect(w, r, loginPagePath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}
	http.Error(w, message, code)
}

// requireSession loads the user of the session_token cookie into the
// request context.
func (s *Server) requireSession(fail authFailure) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil {
				fail(w, r, http.StatusUnauthorized, "Unauthorized: No session token")
				return
			}

			user, err := s.store.GetUserFromSession(cookie.Value)
			if err != nil {
				fail(w, r, http.StatusUnauthorized, "Unauthorized: Invalid session")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin must be chained after requireSession.
func requireAdmin(fail authFailure) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getUserFromContext(r)
			if user == nil {
				fail(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if user.Role != "admin" {
				fail(w, r, http.StatusForbidden, "Forbidden: Administrator access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware rejects API requests without a valid session.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return s.requireSession(jsonAuthFailure)(next)
}

// AdminOnlyMiddleware rejects API requests of non-admin users.
func (s *Server) AdminOnlyMiddleware(next http.Handler) http.Handler {
	return requireAdmin(jsonAuthFailure)(next)
}

// PageAuthMiddleware redirects page requests without a valid session to the
// login form.
func (s *Server) PageAuthMiddleware(next http.Handler) http.Handler {
	return s.requireSession(pageAuthFailure)(next)
}

// PageAdminOnlyMiddleware answers page requests of non-admin users with a
// plain 403.
func (s *Server) PageAdminOnlyMiddleware(next http.Handler) http.Handler {
	return requireAdmin(pageAuthFailure)(next)
}

// getUserFromContext returns the user stored by requireSession, or nil.
func getUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
