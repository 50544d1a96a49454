package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-lms-portal/backend"
	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog/log"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgUnreachable        = "Unable to reach the server. Please try again."
	msgSomethingWrong     = "Something went wrong. Please try again."
)

type signInForm struct {
	Email string
}

type registerForm struct {
	FirstName string
	LastName  string
	Email     string
}

// SignInPageHandler displays the sign-in page
func (s *Server) SignInPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signin.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newPageData(r, "Sign in")
		data.Content = signInForm{Email: r.URL.Query().Get("email")}
		render(w, http.StatusOK, tmpl, data)
	}
}

// SignInSubmitHandler processes the sign-in form
func (s *Server) SignInSubmitHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signin.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		profile, err := s.auth.Login(r.Context(), browserKey(r), email, password)
		if err != nil {
			status, msg := formError(err, msgInvalidCredentials)
			data := s.newPageData(r, "Sign in")
			data.Error = msg
			data.Content = signInForm{Email: email}
			render(w, status, tmpl, data)
			return
		}
		redirectSuccess(w, r, users.LandingPath(profile.Role))
	}
}

// RegisterPageHandler displays the registration page
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newPageData(r, "Register")
		data.Content = registerForm{}
		render(w, http.StatusOK, tmpl, data)
	}
}

// RegisterSubmitHandler creates an account and sends the browser to sign-in with the backend's message
func (s *Server) RegisterSubmitHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := registerForm{
			FirstName: strings.TrimSpace(r.FormValue("firstName")),
			LastName:  strings.TrimSpace(r.FormValue("lastName")),
			Email:     strings.TrimSpace(r.FormValue("email")),
		}
		password := r.FormValue("password")
		if password != r.FormValue("confirmPassword") {
			data := s.newPageData(r, "Register")
			data.Error = "Passwords do not match"
			data.Content = form
			render(w, http.StatusBadRequest, tmpl, data)
			return
		}

		msg, err := s.auth.Register(r.Context(), backend.RegisterRequest{
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
			Password:  password,
		})
		if err != nil {
			status, errMsg := formError(err, msgSomethingWrong)
			data := s.newPageData(r, "Register")
			data.Error = errMsg
			data.Content = form
			render(w, status, tmpl, data)
			return
		}
		if msg == "" {
			msg = "Registered successfully"
		}
		redirectWithMessage(w, r, RouteSignIn, msg)
	}
}

// LogoutHandler clears the browser's tokens and session
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Logout(r.Context(), browserKey(r)); err != nil {
			log.Err(err).Msg("Failed to log out")
		}
		redirectSuccess(w, r, RouteSignIn)
	}
}

// signOut ends the browser's session after the backend rejected its credentials and sends it to sign-in
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), browserKey(r)); err != nil {
		log.Err(err).Msg("Failed to log out")
	}
	redirectSuccess(w, r, RouteSignIn)
}

// formError maps an auth or backend error to a status and a message that is safe to show
func formError(err error, unauthorizedMsg string) (int, string) {
	if ve, ok := errors.IsValidation(err); ok {
		return http.StatusBadRequest, ve.Msg
	}
	switch {
	case errors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized, unauthorizedMsg
	case errors.Is(err, errors.ErrNetwork):
		log.Warn().Err(err).Msg("Backend unreachable")
		return http.StatusServiceUnavailable, msgUnreachable
	default:
		log.Err(err).Msg("Backend request failed")
		return http.StatusBadGateway, msgSomethingWrong
	}
}
