package sessions

import (
	"time"

	"github.com/jrsteele09/go-lms-portal/users"
)

// State is where a browser's session sits in the auth lifecycle
type State string

const (
	StateIdle            State = "idle"
	StateChecking        State = "checking"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Session is the in-memory view of who is signed in on one browser.
// IsAuthenticated implies User is set.
type Session struct {
	User            *users.Profile
	IsAuthenticated bool
	State           State
	UpdatedAt       time.Time
}

// Valid checks the session against the token store: an authenticated session needs a user and an access token.
func (s Session) Valid(hasAccessToken bool) bool {
	if !s.IsAuthenticated {
		return true
	}
	return s.User != nil && hasAccessToken
}

// Resolved reports whether the lifecycle has reached a final state
func (s Session) Resolved() bool {
	return s.State == StateAuthenticated || s.State == StateUnauthenticated
}

// Equal compares two sessions by state and user snapshot, ignoring UpdatedAt
func (s Session) Equal(other Session) bool {
	if s.IsAuthenticated != other.IsAuthenticated || s.State != other.State {
		return false
	}
	return s.User.Equal(other.User)
}

// Store holds sessions per browser key. It is shared by the initializer, the route guard and the handlers.
type Store interface {
	// Get returns the session for key, or an idle session when none exists.
	Get(key string) Session
	// SetChecking marks key as being resolved without touching the user.
	SetChecking(key string)
	// SetUser stores a fresh profile snapshot and marks key authenticated.
	SetUser(key string, user *users.Profile)
	// Logout drops the user and marks key unauthenticated.
	Logout(key string)
	// Delete forgets key entirely, returning it to idle.
	Delete(key string)
}
