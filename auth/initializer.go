package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-lms-portal/backend"
	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/internal/metrics"
	"github.com/jrsteele09/go-lms-portal/sessions"
	"github.com/jrsteele09/go-lms-portal/token"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultInitTimeout bounds an Initialize run when WithInitTimeout is not given
const DefaultInitTimeout = 15 * time.Second

// Backend is the part of the LMS backend the auth lifecycle talks to
type Backend interface {
	FetchProfile(ctx context.Context, accessToken string) (*users.Profile, error)
	Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResult, error)
	Register(ctx context.Context, req backend.RegisterRequest) (string, error)
}

// TokenRefresher mints a new access token from the refresh token held in store and persists it there
type TokenRefresher interface {
	Refresh(ctx context.Context, store token.Store) (string, error)
}

// Repos groups the per-browser state the service reads and writes
type Repos struct {
	Tokens   token.Keyed
	Sessions sessions.Store
}

// Service resolves, establishes and tears down a browser's signed-in state.
type Service struct {
	repos     Repos
	backend   Backend
	refresher TokenRefresher
	timeout   time.Duration
	nowTime   func() time.Time
	leeway    time.Duration
	metrics   *metrics.Metrics
	group     singleflight.Group
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithInitTimeout bounds a single Initialize run
func WithInitTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithNowTime sets the clock used for token expiry checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithExpiryLeeway makes the token source refresh this long before an access token's exp
func WithExpiryLeeway(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.leeway = d
	}
}

// WithMetrics records init outcomes and guard decisions on m
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a Service over repos that talks to b and refreshes through refresher
func NewService(repos Repos, b Backend, refresher TokenRefresher, options ...ServiceOption) *Service {
	s := &Service{
		repos:     repos,
		backend:   b,
		refresher: refresher,
		timeout:   DefaultInitTimeout,
		nowTime:   time.Now,
		leeway:    10 * time.Second,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Session returns the current session for key without resolving it
func (s *Service) Session(key string) sessions.Session {
	return s.repos.Sessions.Get(key)
}

// Initialize resolves the session for key from the stored tokens.
// Concurrent calls for the same key share one run. The run is bounded by the init timeout
// and always ends Authenticated or Unauthenticated; the error only reports why it did not authenticate.
func (s *Service) Initialize(ctx context.Context, key string) (sessions.State, error) {
	ch := s.group.DoChan(key, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		state, err := s.run(runCtx, key)
		s.metrics.AuthInit(string(state))
		return state, err
	})

	select {
	case res := <-ch:
		return res.Val.(sessions.State), res.Err
	case <-ctx.Done():
		return sessions.StateUnauthenticated, errors.Wrapf(errors.ErrNetwork, "[auth Initialize] %v", ctx.Err())
	}
}

func (s *Service) run(ctx context.Context, key string) (sessions.State, error) {
	s.repos.Sessions.SetChecking(key)
	store := s.repos.Tokens.For(key)

	pair, ok, err := store.Read(ctx)
	if err != nil {
		s.repos.Sessions.Logout(key)
		return s.finish(ctx, key, store, errors.Wrapf(err, "[auth Initialize] failed to read tokens"))
	}
	if !ok || pair.Empty() {
		s.repos.Sessions.Logout(key)
		return s.finish(ctx, key, store, nil)
	}

	if pair.AccessToken != "" {
		profile, err := s.backend.FetchProfile(ctx, pair.AccessToken)
		switch {
		case err == nil:
			s.repos.Sessions.SetUser(key, profile)
			return s.finish(ctx, key, store, nil)
		case errors.Is(err, errors.ErrUnauthorized):
			log.Debug().Str("browser", shortKey(key)).Msg("access token rejected, refreshing")
		default:
			// Fail closed but keep the tokens: the backend may just be unreachable.
			s.repos.Sessions.Logout(key)
			return s.finish(ctx, key, store, err)
		}
	}

	if pair.RefreshToken == "" {
		return s.finish(ctx, key, store, s.clear(ctx, key, store, errors.ErrNoRefreshToken))
	}

	accessToken, err := s.refresher.Refresh(ctx, store)
	if err != nil {
		return s.finish(ctx, key, store, s.clear(ctx, key, store, err))
	}

	profile, err := s.backend.FetchProfile(ctx, accessToken)
	if err != nil {
		return s.finish(ctx, key, store, s.clear(ctx, key, store, err))
	}
	s.repos.Sessions.SetUser(key, profile)
	return s.finish(ctx, key, store, nil)
}

// clear drops both the tokens and the session for key and returns cause
func (s *Service) clear(ctx context.Context, key string, store token.Store, cause error) error {
	if err := store.Clear(ctx); err != nil {
		log.Err(err).Str("browser", shortKey(key)).Msg("failed to clear tokens")
	}
	s.repos.Sessions.Logout(key)
	return cause
}

// finish enforces that an authenticated session always has a user and a stored access token
func (s *Service) finish(ctx context.Context, key string, store token.Store, cause error) (sessions.State, error) {
	sess := s.repos.Sessions.Get(key)
	if sess.IsAuthenticated {
		pair, _, err := store.Read(ctx)
		if err != nil || !sess.Valid(pair.AccessToken != "") {
			log.Warn().Str("browser", shortKey(key)).Msg("authenticated session without user or access token, logging out")
			s.repos.Sessions.Logout(key)
			sess = s.repos.Sessions.Get(key)
		}
	}

	event := log.Debug().Str("browser", shortKey(key)).Str("state", string(sess.State))
	if cause != nil {
		event = event.AnErr("cause", cause)
	}
	event.Msg("auth initialized")
	return sess.State, cause
}

// shortKey keeps browser keys out of logs in full
func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
