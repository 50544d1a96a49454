package auth

import (
	"context"

	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/token"
	"golang.org/x/oauth2"
)

// storeTokenSource hands out the access token stored for one browser,
// refreshing it first when its exp claim says it is about to lapse.
type storeTokenSource struct {
	ctx     context.Context
	service *Service
	store   token.Store

	// refreshErr holds the outcome of the last refresh this source ran
	refreshed  bool
	refreshErr error
}

// TokenSource returns an oauth2.TokenSource backed by the token store for key
func (s *Service) TokenSource(ctx context.Context, key string) oauth2.TokenSource {
	return s.tokenSource(ctx, key)
}

func (s *Service) tokenSource(ctx context.Context, key string) *storeTokenSource {
	return &storeTokenSource{ctx: ctx, service: s, store: s.repos.Tokens.For(key)}
}

func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	pair, ok, err := ts.store.Read(ts.ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "[auth TokenSource] failed to read tokens")
	}
	if !ok || pair.Empty() {
		return nil, errors.ErrUnauthorized
	}

	accessToken := pair.AccessToken
	if accessToken == "" || token.Expired(accessToken, ts.service.nowTime(), ts.service.leeway) {
		accessToken, err = ts.service.refresher.Refresh(ts.ctx, ts.store)
		ts.refreshed, ts.refreshErr = true, err
		if err != nil {
			return nil, err
		}
	}

	t := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if exp, ok := token.ExpiresAt(accessToken); ok {
		t.Expiry = exp
	}
	return t, nil
}
