package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-lms-portal/auth"
	"github.com/jrsteele09/go-lms-portal/users"
)

// IndexHandler sends the browser to its landing page, or to sign-in
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision, sess := s.auth.Authorize(r.Context(), browserKey(r), auth.Policy{})
		if decision.Action == auth.ActionRender && sess.User != nil {
			redirectSuccess(w, r, users.LandingPath(sess.User.Role))
			return
		}
		redirectSuccess(w, r, RouteSignIn)
	}
}

// StaticPageHandler renders a page that needs no backend data
func (s *Server) StaticPageHandler(name, title string) http.HandlerFunc {
	tmpl := mustParseTemplate(name)
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, tmpl, s.newPageData(r, title))
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
