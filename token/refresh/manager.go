package refresh

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/internal/metrics"
	"github.com/jrsteele09/go-lms-portal/token"
	"golang.org/x/sync/singleflight"
)

// Exchanger trades a refresh token for a new access token
type Exchanger interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// Manager mints new access tokens from stored refresh tokens.
// Concurrent refreshes of the same refresh token share one backend call.
// It never retries: errors.ErrUnauthorized is terminal and errors.ErrNetwork is left to the caller.
type Manager struct {
	exchanger Exchanger
	group     singleflight.Group
	metrics   *metrics.Metrics
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

func WithMetrics(m *metrics.Metrics) ManagerOption {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// NewManager creates a new refresh manager
func NewManager(exchanger Exchanger, options ...ManagerOption) *Manager {
	m := &Manager{exchanger: exchanger}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Refresh exchanges the refresh token held in store and persists the new access token there.
func (m *Manager) Refresh(ctx context.Context, store token.Store) (string, error) {
	pair, ok, err := store.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("[refresh Manager] failed to read tokens: %w", err)
	}
	if !ok || pair.RefreshToken == "" {
		return "", errors.ErrNoRefreshToken
	}

	accessToken, err := m.exchange(ctx, pair.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := store.SetAccessToken(ctx, accessToken); err != nil {
		return "", fmt.Errorf("[refresh Manager] failed to persist access token: %w", err)
	}
	return accessToken, nil
}

func (m *Manager) exchange(ctx context.Context, refreshToken string) (string, error) {
	// The shared call outlives any one waiter; the backend client bounds it with its own timeout.
	sharedCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(flightKey(refreshToken), func() (interface{}, error) {
		accessToken, err := m.exchanger.RefreshAccessToken(sharedCtx, refreshToken)
		m.metrics.TokenRefresh(result(err))
		return accessToken, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("[refresh Manager] %w: %v", errors.ErrNetwork, ctx.Err())
	}
}

// flightKey avoids holding raw refresh tokens as map keys
func flightKey(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return hex.EncodeToString(sum[:])
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, errors.ErrNetwork):
		return "network"
	default:
		return "error"
	}
}
