package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-lms-portal/internal/config"
	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/internal/metrics"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client talks to the LMS backend API. Every request is bounded by the client timeout
// in addition to the caller's context.
type Client struct {
	baseURL  string
	base     http.RoundTripper
	timeout  time.Duration
	validate *validator.Validate
	metrics  *metrics.Metrics
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithTransport replaces the underlying round tripper (primarily for testing)
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.base = rt
	}
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a backend client for the configured API URL.
func NewClient(cfg config.BackendConfig, options ...ClientOption) *Client {
	timeout := cfg.GetAPITimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:  strings.TrimSuffix(cfg.GetAPIURL(), "/"),
		base:     http.DefaultTransport,
		timeout:  timeout,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	c.validate.RegisterTagNameFunc(jsonFieldName)
	for _, opt := range options {
		opt(c)
	}
	return c
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// httpClient returns a client that attaches a bearer credential from ts, or none when ts is nil
func (c *Client) httpClient(ts oauth2.TokenSource) *http.Client {
	rt := c.base
	if ts != nil {
		rt = &oauth2.Transport{Source: ts, Base: c.base}
	}
	return &http.Client{Transport: rt, Timeout: c.timeout}
}

// bearer wraps a single known token for one request
func bearer(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// do sends one request and decodes a JSON response into out (when non-nil).
// Status codes are mapped onto the portal's error taxonomy.
func (c *Client) do(ctx context.Context, endpoint, method, path string, ts oauth2.TokenSource, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[backend %s] failed to encode request: %w", endpoint, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("[backend %s] failed to create request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient(ts).Do(req)
	if err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			c.metrics.BackendRequest(endpoint, "unauthorized")
			return fmt.Errorf("[backend %s] %w", endpoint, err)
		}
		c.metrics.BackendRequest(endpoint, "network")
		return fmt.Errorf("[backend %s] %w: %v", endpoint, errors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.BackendRequest(endpoint, "network")
		return fmt.Errorf("[backend %s] %w: reading response: %v", endpoint, errors.ErrNetwork, err)
	}

	if err := statusError(endpoint, resp.StatusCode, payload); err != nil {
		c.metrics.BackendRequest(endpoint, outcome(err))
		return err
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			c.metrics.BackendRequest(endpoint, "malformed")
			return fmt.Errorf("[backend %s] %w: malformed response: %v", endpoint, errors.ErrBackend, err)
		}
	}
	c.metrics.BackendRequest(endpoint, "ok")
	return nil
}

// messageBody is the backend's conventional {msg} envelope
type messageBody struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func (m messageBody) text() string {
	if m.Msg != "" {
		return m.Msg
	}
	return m.Message
}

func statusError(endpoint string, status int, payload []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	var m messageBody
	_ = json.Unmarshal(payload, &m)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("[backend %s] %w (status %d)", endpoint, errors.ErrUnauthorized, status)
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		msg := m.text()
		if msg == "" {
			msg = http.StatusText(status)
		}
		return errors.NewValidationError("", msg)
	case http.StatusNotFound:
		return fmt.Errorf("[backend %s] %w: %w (status %d)", endpoint, errors.ErrBackend, errors.ErrNotFound, status)
	default:
		return fmt.Errorf("[backend %s] %w: status %d %s", endpoint, errors.ErrBackend, status, m.text())
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, errors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, errors.ErrNetwork):
		return "network"
	}
	if _, ok := errors.IsValidation(err); ok {
		return "invalid"
	}
	return "error"
}

// validateStruct turns validator failures into a ValidationError naming the first bad field
func (c *Client) validateStruct(v any) error {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.NewValidationError(fe.Field(), fieldMessage(fe))
	}
	return errors.NewValidationError("", err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
