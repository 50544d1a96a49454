package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/token"
	"github.com/jrsteele09/go-lms-portal/users"
)

// Backend auth routes
const (
	PathMe           = "/auth/me"
	PathRefreshToken = "/auth/refresh-token"
	PathLogin        = "/auth/login"
	PathRegister     = "/auth/register"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginResult is what a successful login yields: the profile, the token pair and the backend's message
type LoginResult struct {
	User   users.Profile
	Tokens token.Pair
	Msg    string
}

type meResponse struct {
	User *users.Profile `json:"user"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// loginResponse carries a user object that is a profile with the tokens inlined.
// It is decoded twice, once as a Profile and once for the tokens.
type loginResponse struct {
	User json.RawMessage `json:"user"`
	Msg  string          `json:"msg"`
}

// FetchProfile asks the backend who accessToken belongs to.
// A rejected token yields errors.ErrUnauthorized; transport failures yield errors.ErrNetwork.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*users.Profile, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("[backend me] empty access token: %w", errors.ErrUnauthorized)
	}
	var resp meResponse
	if err := c.do(ctx, "me", http.MethodGet, PathMe, bearer(accessToken), nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("[backend me] %w: response has no user", errors.ErrBackend)
	}
	return resp.User, nil
}

// RefreshAccessToken exchanges refreshToken for a new access token.
// errors.ErrUnauthorized means the refresh token itself is no longer accepted.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.ErrNoRefreshToken
	}
	var resp refreshResponse
	if err := c.do(ctx, "refresh", http.MethodPost, PathRefreshToken, bearer(refreshToken), struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("[backend refresh] %w: response has no access token", errors.ErrBackend)
	}
	return resp.AccessToken, nil
}

// Login exchanges credentials for a profile and a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := c.validateStruct(req); err != nil {
		return nil, err
	}
	var resp loginResponse
	if err := c.do(ctx, "login", http.MethodPost, PathLogin, nil, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.User) == 0 {
		return nil, fmt.Errorf("[backend login] %w: response has no user", errors.ErrBackend)
	}
	result := &LoginResult{Msg: resp.Msg}
	if err := json.Unmarshal(resp.User, &result.User); err != nil {
		return nil, fmt.Errorf("[backend login] %w: malformed user: %v", errors.ErrBackend, err)
	}
	if err := json.Unmarshal(resp.User, &result.Tokens); err != nil {
		return nil, fmt.Errorf("[backend login] %w: malformed tokens: %v", errors.ErrBackend, err)
	}
	if result.Tokens.AccessToken == "" {
		return nil, fmt.Errorf("[backend login] %w: response has no access token", errors.ErrBackend)
	}
	return result, nil
}

// Register creates an account and returns the backend's message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if err := c.validateStruct(req); err != nil {
		return "", err
	}
	var resp messageBody
	if err := c.do(ctx, "register", http.MethodPost, PathRegister, nil, req, &resp); err != nil {
		return "", err
	}
	return resp.text(), nil
}
