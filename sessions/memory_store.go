package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog/log"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store. Sessions are rebuilt from the token store after a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	nowTime  func() time.Time
}

// MemoryStoreOption defines a function type to modify the MemoryStore instance.
type MemoryStoreOption func(*MemoryStore)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) MemoryStoreOption {
	return func(m *MemoryStore) {
		m.nowTime = nowFunc
	}
}

func NewMemoryStore(options ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]Session),
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *MemoryStore) Get(key string) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	if !ok {
		return Session{State: StateIdle}
	}
	return s
}

func (m *MemoryStore) SetChecking(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[key]
	s.State = StateChecking
	s.UpdatedAt = m.nowTime()
	m.sessions[key] = s
}

func (m *MemoryStore) SetUser(key string, user *users.Profile) {
	if user == nil {
		m.Logout(key)
		return
	}
	snapshot := *user
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = Session{
		User:            &snapshot,
		IsAuthenticated: true,
		State:           StateAuthenticated,
		UpdatedAt:       m.nowTime(),
	}
}

func (m *MemoryStore) Logout(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = Session{
		State:     StateUnauthenticated,
		UpdatedAt: m.nowTime(),
	}
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// Sweep forgets sessions not updated within maxAge and returns how many were removed
func (m *MemoryStore) Sweep(maxAge time.Duration) int {
	cutoff := m.nowTime().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep(maxAge) every interval until ctx ends.
// A non-positive interval disables sweeping and StartSweeper reports false.
func (m *MemoryStore) StartSweeper(ctx context.Context, interval, maxAge time.Duration) bool {
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Msg("session sweeping disabled")
		return false
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.Sweep(maxAge); n > 0 {
					log.Debug().Int("removed", n).Msg("swept idle sessions")
				}
			}
		}
	}()
	return true
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
