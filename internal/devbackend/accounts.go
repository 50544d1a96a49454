package devbackend

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-lms-portal/users"
	"golang.org/x/crypto/bcrypt"
)

const defaultHashCost = bcrypt.DefaultCost

// AddUser creates an account and returns its profile
func (s *Server) AddUser(firstName, lastName, email, password string, role users.Role) (*users.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("[devbackend AddUser] failed to hash password: %w", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return nil, fmt.Errorf("[devbackend AddUser] user %s already exists", email)
	}

	now := s.nowTime().UTC()
	profile := users.Profile{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[email] = &account{profile: profile, passwordHash: string(hash)}
	if role == users.RoleStudent {
		s.students[profile.ID] = users.Student{
			ID:        profile.ID,
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
			IsActive:  true,
		}
	}
	return &profile, nil
}

// SetActive toggles an account; inactive accounts cannot log in
func (s *Server) SetActive(email string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[strings.ToLower(email)]; ok {
		a.profile.IsActive = active
	}
}

func (s *Server) checkCredentials(email, password string) (*users.Profile, bool) {
	s.mu.Lock()
	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) != nil {
		return nil, false
	}
	p := a.profile
	return &p, true
}

// profileByID must be called with s.mu held
func (s *Server) profileByID(id string) (*users.Profile, bool) {
	for _, a := range s.accounts {
		if a.profile.ID == id {
			p := a.profile
			return &p, true
		}
	}
	return nil, false
}
