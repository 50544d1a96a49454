// Package devbackend is an in-process stand-in for the LMS backend API. It serves the
// auth and student endpoints the portal consumes, counts calls per endpoint, and lets
// tests expire or revoke credentials on demand.
package devbackend

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-lms-portal/users"
)

// Endpoint names used by Calls
const (
	EndpointMe       = "me"
	EndpointRefresh  = "refresh"
	EndpointLogin    = "login"
	EndpointRegister = "register"
	EndpointStudents = "students"
)

type account struct {
	profile      users.Profile
	passwordHash string
}

type Server struct {
	mux       *http.ServeMux
	secret    []byte
	accessTTL time.Duration
	hashCost  int
	nowTime   func() time.Time

	mu            sync.Mutex
	accounts      map[string]*account // email -> account
	refreshTokens map[string]string   // refresh token -> user ID
	students      map[string]users.Student
	generation    int64
	calls         map[string]int
	blocked       map[string]chan struct{}
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithHashCost sets the bcrypt cost used for stored passwords
func WithHashCost(cost int) Option {
	return func(s *Server) {
		s.hashCost = cost
	}
}

// New creates a backend signing access tokens with secret that live for accessTTL.
func New(secret string, accessTTL time.Duration, options ...Option) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		secret:        []byte(secret),
		accessTTL:     accessTTL,
		hashCost:      defaultHashCost,
		nowTime:       time.Now,
		accounts:      make(map[string]*account),
		refreshTokens: make(map[string]string),
		students:      make(map[string]users.Student),
		calls:         make(map[string]int),
		blocked:       make(map[string]chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("GET /auth/me", s.counted(EndpointMe, s.meHandler))
	s.mux.HandleFunc("POST /auth/refresh-token", s.counted(EndpointRefresh, s.refreshHandler))
	s.mux.HandleFunc("POST /auth/login", s.counted(EndpointLogin, s.loginHandler))
	s.mux.HandleFunc("POST /auth/register", s.counted(EndpointRegister, s.registerHandler))
	s.mux.HandleFunc("GET /student/get-all", s.counted(EndpointStudents, s.requireAdmin(s.listStudentsHandler)))
	s.mux.HandleFunc("POST /student/create", s.counted(EndpointStudents, s.requireAdmin(s.saveStudentHandler)))
	s.mux.HandleFunc("POST /student/create/{id}", s.counted(EndpointStudents, s.requireAdmin(s.saveStudentHandler)))
	s.mux.HandleFunc("DELETE /student/delete/{id}", s.counted(EndpointStudents, s.requireAdmin(s.deleteStudentHandler)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// counted records the call and, when the endpoint is blocked, holds the request until released or cancelled
func (s *Server) counted(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[endpoint]++
		gate := s.blocked[endpoint]
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		next(w, r)
	}
}

// Calls returns how many requests endpoint has received
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// TotalCalls returns the number of requests across all endpoints
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// Block makes requests to endpoint hang until the returned release func is called
// or the request context ends.
func (s *Server) Block(endpoint string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.blocked[endpoint] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.blocked, endpoint)
			s.mu.Unlock()
			close(gate)
		})
	}
}

type msgResponse struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, msgResponse{Msg: msg})
}
