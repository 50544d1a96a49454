package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-lms-portal/auth"
	"github.com/jrsteele09/go-lms-portal/backend"
	"github.com/jrsteele09/go-lms-portal/internal/devbackend"
	"github.com/jrsteele09/go-lms-portal/sessions"
	"github.com/jrsteele09/go-lms-portal/token"
	"github.com/jrsteele09/go-lms-portal/token/refresh"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminEmail   = "admin@example.com"
	testStudentEmail = "student@example.com"
	testPassword     = "Passw0rd!"
	testKey          = "4f1c2a9e-browser-key"
)

type backendConfig struct {
	url     string
	timeout time.Duration
}

func (c backendConfig) GetAPIURL() string            { return c.url }
func (c backendConfig) GetAPITimeout() time.Duration { return c.timeout }

// testFixture wires the auth service to an in-process backend over real HTTP
type testFixture struct {
	backend  *devbackend.Server
	server   *httptest.Server
	client   *backend.Client
	tokens   *token.MemoryStore
	sessions *sessions.MemoryStore
	service  *auth.Service
}

func setupTestFixture(t *testing.T, options ...auth.ServiceOption) *testFixture {
	t.Helper()

	b := devbackend.New("test-secret", time.Hour, devbackend.WithHashCost(bcrypt.MinCost))
	_, err := b.AddUser("Ada", "Admin", testAdminEmail, testPassword, users.RoleAdmin)
	require.NoError(t, err)
	_, err = b.AddUser("Sam", "Student", testStudentEmail, testPassword, users.RoleStudent)
	require.NoError(t, err)

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	client := backend.NewClient(backendConfig{url: srv.URL, timeout: 5 * time.Second})
	f := &testFixture{
		backend:  b,
		server:   srv,
		client:   client,
		tokens:   token.NewMemoryStore(),
		sessions: sessions.NewMemoryStore(),
	}
	f.service = auth.NewService(
		auth.Repos{Tokens: f.tokens, Sessions: f.sessions},
		client,
		refresh.NewManager(client),
		options...,
	)
	return f
}

// seedTokens stores a freshly issued pair for email under key, as if the browser had signed in earlier
func (f *testFixture) seedTokens(t *testing.T, key, email string) token.Pair {
	t.Helper()
	pair, err := f.backend.IssueTokens(email)
	require.NoError(t, err)
	require.NoError(t, f.tokens.For(key).Save(context.Background(), pair))
	f.backend.ResetCalls()
	return pair
}

func (f *testFixture) storedPair(t *testing.T, key string) (token.Pair, bool) {
	t.Helper()
	pair, ok, err := f.tokens.For(key).Read(context.Background())
	require.NoError(t, err)
	return pair, ok
}

// requireConsistent asserts an authenticated session always has a user and a stored access token
func (f *testFixture) requireConsistent(t *testing.T, key string) {
	t.Helper()
	pair, _ := f.storedPair(t, key)
	sess := f.sessions.Get(key)
	require.True(t, sess.Valid(pair.AccessToken != ""), "session %+v with access token %q", sess, pair.AccessToken)
}
