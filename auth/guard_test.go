package auth_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-lms-portal/auth"
	"github.com/jrsteele09/go-lms-portal/internal/devbackend"
	"github.com/jrsteele09/go-lms-portal/sessions"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/stretchr/testify/require"
)

func signedIn(role users.Role) sessions.Session {
	return sessions.Session{
		User:            &users.Profile{ID: "u1", Email: "someone@example.com", Role: role},
		IsAuthenticated: true,
		State:           sessions.StateAuthenticated,
	}
}

func TestEvaluate(t *testing.T) {
	adminOnly := auth.Policy{Roles: []users.Role{users.RoleAdmin}}
	studentOnly := auth.Policy{Roles: []users.Role{users.RoleStudent}}
	anyRole := auth.Policy{}
	signInPage := auth.Policy{RedirectIfAuthenticated: true}
	signedOut := sessions.Session{State: sessions.StateUnauthenticated}
	idle := sessions.Session{State: sessions.StateIdle}

	tests := []struct {
		name     string
		policy   auth.Policy
		session  sessions.Session
		hasToken bool
		want     auth.Decision
	}{
		{"student on admin route", adminOnly, signedIn(users.RoleStudent), true, auth.Decision{Action: auth.ActionRedirect, Location: auth.SignInPath}},
		{"admin on admin route", adminOnly, signedIn(users.RoleAdmin), true, auth.Decision{Action: auth.ActionRender}},
		{"admin on student route", studentOnly, signedIn(users.RoleAdmin), true, auth.Decision{Action: auth.ActionRedirect, Location: auth.SignInPath}},
		{"any role", anyRole, signedIn(users.RoleStudent), true, auth.Decision{Action: auth.ActionRender}},
		{"no token", anyRole, signedOut, false, auth.Decision{Action: auth.ActionRedirect, Location: auth.SignInPath}},
		{"user but no token", adminOnly, signedIn(users.RoleAdmin), false, auth.Decision{Action: auth.ActionRedirect, Location: auth.SignInPath}},
		{"token not yet resolved", adminOnly, idle, true, auth.Decision{Action: auth.ActionWait}},
		{"sign-in page as admin", signInPage, signedIn(users.RoleAdmin), true, auth.Decision{Action: auth.ActionRedirect, Location: users.AdminLandingPath}},
		{"sign-in page as student", signInPage, signedIn(users.RoleStudent), true, auth.Decision{Action: auth.ActionRedirect, Location: users.StudentLandingPath}},
		{"sign-in page signed out", signInPage, signedOut, false, auth.Decision{Action: auth.ActionRender}},
		{"sign-in page unresolved token", signInPage, idle, true, auth.Decision{Action: auth.ActionWait}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, auth.Evaluate(tt.policy, tt.session, tt.hasToken))
		})
	}
}

func TestAuthorize_ResolvesIdleSession(t *testing.T) {
	f := setupTestFixture(t)
	f.seedTokens(t, testKey, testAdminEmail)

	decision, sess := f.service.Authorize(context.Background(), testKey, auth.Policy{Roles: []users.Role{users.RoleAdmin}})
	require.Equal(t, auth.ActionRender, decision.Action)
	require.True(t, sess.IsAuthenticated)
	require.Equal(t, 1, f.backend.Calls(devbackend.EndpointMe))

	// Resolved sessions are not fetched again.
	decision, _ = f.service.Authorize(context.Background(), testKey, auth.Policy{Roles: []users.Role{users.RoleAdmin}})
	require.Equal(t, auth.ActionRender, decision.Action)
	require.Equal(t, 1, f.backend.Calls(devbackend.EndpointMe))
}

func TestAuthorize_StudentOnAdminRoute(t *testing.T) {
	f := setupTestFixture(t)
	f.seedTokens(t, testKey, testStudentEmail)

	decision, _ := f.service.Authorize(context.Background(), testKey, auth.Policy{Roles: []users.Role{users.RoleAdmin}})
	require.Equal(t, auth.Decision{Action: auth.ActionRedirect, Location: auth.SignInPath}, decision)
}

func TestAuthorize_SignInPageAsAdmin(t *testing.T) {
	f := setupTestFixture(t)
	f.seedTokens(t, testKey, testAdminEmail)

	decision, _ := f.service.Authorize(context.Background(), testKey, auth.Policy{RedirectIfAuthenticated: true})
	require.Equal(t, auth.Decision{Action: auth.ActionRedirect, Location: users.AdminLandingPath}, decision)
}

func TestAuthorize_ExpiredTokenOnSignInPage(t *testing.T) {
	f := setupTestFixture(t)
	f.seedTokens(t, testKey, testStudentEmail)
	f.backend.ExpireAccessTokens()

	decision, sess := f.service.Authorize(context.Background(), testKey, auth.Policy{RedirectIfAuthenticated: true})
	require.Equal(t, auth.Decision{Action: auth.ActionRedirect, Location: users.StudentLandingPath}, decision)
	require.Equal(t, sessions.StateAuthenticated, sess.State)
	require.Equal(t, 1, f.backend.Calls(devbackend.EndpointRefresh))
}

func TestAuthorize_SessionWithoutTokensLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.sessions.SetUser(testKey, &users.Profile{ID: "u1", Role: users.RoleAdmin})

	decision, sess := f.service.Authorize(context.Background(), testKey, auth.Policy{Roles: []users.Role{users.RoleAdmin}})
	require.Equal(t, auth.Decision{Action: auth.ActionRedirect, Location: auth.SignInPath}, decision)
	require.False(t, sess.IsAuthenticated)
	require.Nil(t, sess.User)
	require.Zero(t, f.backend.TotalCalls())
}

func TestAuthorize_UnreachableBackend(t *testing.T) {
	f := setupTestFixture(t)
	f.seedTokens(t, testKey, testAdminEmail)
	f.server.Close()

	decision, _ := f.service.Authorize(context.Background(), testKey, auth.Policy{Roles: []users.Role{users.RoleAdmin}})
	require.Equal(t, auth.Decision{Action: auth.ActionRedirect, Location: auth.SignInPath}, decision)

	decision, _ = f.service.Authorize(context.Background(), testKey, auth.Policy{RedirectIfAuthenticated: true})
	require.Equal(t, auth.ActionRender, decision.Action)
}
