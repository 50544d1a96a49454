package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-lms-portal/auth"
	"github.com/jrsteele09/go-lms-portal/sessions"
	"github.com/jrsteele09/go-lms-portal/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyBrowser stores the portal cookie's browser key
	ContextKeyBrowser ContextKey = "browser_key"
	// ContextKeySession stores the session the guard decided on
	ContextKeySession ContextKey = "session"
)

// RequireRoles only lets through signed-in users holding one of roles. No roles means any signed-in user.
func (s *Server) RequireRoles(roles ...users.Role) func(http.HandlerFunc) http.HandlerFunc {
	return s.guard(auth.Policy{Roles: roles})
}

// RedirectIfAuthenticated sends signed-in users to their landing page instead of the wrapped page
func (s *Server) RedirectIfAuthenticated() func(http.HandlerFunc) http.HandlerFunc {
	return s.guard(auth.Policy{RedirectIfAuthenticated: true})
}

// guard resolves the browser's session and either runs next or redirects.
// Nothing is written for next's page until the decision is Render.
func (s *Server) guard(policy auth.Policy) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision, sess := s.auth.Authorize(r.Context(), browserKey(r), policy)
			if decision.Action != auth.ActionRender {
				redirectSuccess(w, r, decision.Location)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFrom returns the session stored by the guard
func sessionFrom(r *http.Request) sessions.Session {
	sess, _ := r.Context().Value(ContextKeySession).(sessions.Session)
	return sess
}
