package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-lms-portal/auth"
	"github.com/jrsteele09/go-lms-portal/internal/config"
	"github.com/jrsteele09/go-lms-portal/internal/metrics"
	"github.com/jrsteele09/go-lms-portal/standards"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// StudentsBackend is the backend's student administration API
type StudentsBackend interface {
	ListStudents(ctx context.Context, ts oauth2.TokenSource) ([]users.Student, error)
	SaveStudent(ctx context.Context, ts oauth2.TokenSource, student users.Student) (string, error)
	DeleteStudent(ctx context.Context, ts oauth2.TokenSource, id string) error
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	auth     *auth.Service
	students  StudentsBackend
	standards *standards.Registry
	metrics   *metrics.Metrics
}

func New(config config.Config, authService *auth.Service, students StudentsBackend, registry *standards.Registry, m *metrics.Metrics) *Server {
	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		auth:      authService,
		students:  students,
		standards: registry,
		metrics:   m,
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if colour, ok := MethodColors[method]; ok {
		return colour + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

// getScheme determines the scheme (http/https), honouring a proxy's X-Forwarded-Proto
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
