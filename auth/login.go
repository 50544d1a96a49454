package auth

import (
	"context"

	"github.com/jrsteele09/go-lms-portal/backend"
	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Login signs key in with email and password, storing the issued tokens and the returned profile.
func (s *Service) Login(ctx context.Context, key, email, password string) (*users.Profile, error) {
	result, err := s.backend.Login(ctx, backend.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if result.Tokens.AccessToken == "" {
		return nil, errors.Wrapf(errors.ErrBackend, "[auth Login] login response carried no access token")
	}

	if err := s.repos.Tokens.For(key).Save(ctx, result.Tokens); err != nil {
		return nil, errors.Wrapf(err, "[auth Login] failed to save tokens")
	}
	profile := result.User
	s.repos.Sessions.SetUser(key, &profile)
	log.Debug().Str("browser", shortKey(key)).Str("role", string(profile.Role)).Msg("signed in")
	return &profile, nil
}

// Register creates an account. It does not sign the browser in.
func (s *Service) Register(ctx context.Context, req backend.RegisterRequest) (string, error) {
	return s.backend.Register(ctx, req)
}

// Logout forgets the tokens and the user for key
func (s *Service) Logout(ctx context.Context, key string) error {
	err := s.repos.Tokens.For(key).Clear(ctx)
	s.repos.Sessions.Logout(key)
	if err != nil {
		return errors.Wrapf(err, "[auth Logout] failed to clear tokens")
	}
	log.Debug().Str("browser", shortKey(key)).Msg("signed out")
	return nil
}

// CallWithToken runs fn with a token source for key. If the backend rejects the access token,
// the token is refreshed and fn is run once more. A refresh the token source already ran counts
// as that one refresh. A rejected refresh token signs key out.
func (s *Service) CallWithToken(ctx context.Context, key string, fn func(ts oauth2.TokenSource) error) error {
	ts := s.tokenSource(ctx, key)
	err := fn(ts)
	if !errors.Is(err, errors.ErrUnauthorized) {
		return err
	}

	store := s.repos.Tokens.For(key)
	if ts.refreshed {
		if errors.Is(ts.refreshErr, errors.ErrUnauthorized) {
			_ = s.clear(ctx, key, store, ts.refreshErr)
		}
		return err
	}
	if _, refreshErr := s.refresher.Refresh(ctx, store); refreshErr != nil {
		if errors.Is(refreshErr, errors.ErrUnauthorized) {
			_ = s.clear(ctx, key, store, refreshErr)
		}
		return refreshErr
	}
	return fn(ts)
}
