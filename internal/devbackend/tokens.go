package devbackend

import (
	"fmt"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-lms-portal/token"
	"github.com/jrsteele09/go-lms-portal/users"
)

type accessClaims struct {
	Role       users.Role `json:"role"`
	Generation int64      `json:"gen"`
	jwtlib.RegisteredClaims
}

// IssueTokens mints a fresh pair for an existing account, as a successful login would
func (s *Server) IssueTokens(email string) (token.Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return token.Pair{}, fmt.Errorf("[devbackend IssueTokens] unknown user %s", email)
	}
	return s.issuePairLocked(&a.profile)
}

func (s *Server) issuePairLocked(p *users.Profile) (token.Pair, error) {
	access, err := s.signAccessLocked(p)
	if err != nil {
		return token.Pair{}, err
	}
	refresh := strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	s.refreshTokens[refresh] = p.ID
	return token.Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Server) signAccessLocked(p *users.Profile) (string, error) {
	now := s.nowTime()
	claims := accessClaims{
		Role:       p.Role,
		Generation: s.generation,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("[devbackend] failed to sign access token: %w", err)
	}
	return signed, nil
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// RevokeRefreshTokens invalidates every refresh token issued so far
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens = make(map[string]string)
}

// verifyAccess returns the profile an access token belongs to
func (s *Server) verifyAccess(raw string) (*users.Profile, bool) {
	var claims accessClaims
	_, err := jwtlib.ParseWithClaims(raw, &claims, func(*jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(s.nowTime))
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if claims.Generation != s.generation {
		return nil, false
	}
	p, ok := s.profileByID(claims.Subject)
	if !ok || !p.IsActive {
		return nil, false
	}
	return p, true
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	value := r.Header.Get("Authorization")
	if !strings.HasPrefix(value, prefix) {
		return "", false
	}
	t := strings.TrimSpace(value[len(prefix):])
	return t, t != ""
}
