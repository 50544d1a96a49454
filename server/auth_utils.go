package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// browserKey returns the key the browser's tokens and session are filed under
func browserKey(r *http.Request) string {
	key, _ := r.Context().Value(ContextKeyBrowser).(string)
	return key
}

// BrowserKeyMiddleware makes sure every browser carries a portal cookie and puts its key in the context.
// Unknown or malformed cookie values are replaced.
func (s *Server) BrowserKeyMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := s.config.GetSessionCookieName()
		key := ""
		if cookie, err := r.Cookie(name); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				key = id.String()
			}
		}
		if key == "" {
			key = uuid.NewString()
			s.setBrowserCookie(w, r, key)
		}

		ctx := context.WithValue(r.Context(), ContextKeyBrowser, key)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) setBrowserCookie(w http.ResponseWriter, r *http.Request, key string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https" || strings.HasPrefix(s.config.GetBaseURL(), "https://"),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetSessionMaxAge().Seconds()),
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

// redirectWithMessage carries a flash message to the next page
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	redirectSuccess(w, r, withQuery(path, "msg", msg))
}

func withQuery(path, name, value string) string {
	if value == "" {
		return path
	}
	return path + "?" + url.Values{name: {value}}.Encode()
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
