package users

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// Role is the role the backend assigns to an account
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

const (
	AdminLandingPath   = "/admin/dashboard"
	StudentLandingPath = "/student/courses"
)

// Profile is the snapshot of the signed-in user returned by the backend's "who am I" endpoint.
// It is replaced wholesale on every successful fetch and never mutated in place.
type Profile struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
	LastLogin time.Time `json:"lastLogin,omitempty"`
}

// UnmarshalJSON accepts the backend's "_id" as an alias for "id"
func (p *Profile) UnmarshalJSON(data []byte) error {
	type profileAlias Profile
	var raw struct {
		profileAlias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Profile(raw.profileAlias)
	if p.ID == "" {
		p.ID = raw.MongoID
	}
	return nil
}

// Equal compares two snapshots field by field, using time.Time.Equal for timestamps
func (p *Profile) Equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID == other.ID &&
		p.FirstName == other.FirstName &&
		p.LastName == other.LastName &&
		p.Email == other.Email &&
		p.Role == other.Role &&
		p.IsActive == other.IsActive &&
		p.CreatedAt.Equal(other.CreatedAt) &&
		p.UpdatedAt.Equal(other.UpdatedAt) &&
		p.LastLogin.Equal(other.LastLogin)
}

// DisplayName returns "First Last", falling back to the email address
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// HasRole reports whether the profile's role is one of roles. An empty set allows any role.
func (p *Profile) HasRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	return slices.Contains(roles, p.Role)
}

// LandingPath is the default view for a role after sign-in
func LandingPath(role Role) string {
	if role == RoleAdmin {
		return AdminLandingPath
	}
	return StudentLandingPath
}

// Student is a student record managed from the admin screens
type Student struct {
	ID                string `json:"id,omitempty"`
	FirstName         string `json:"firstName" validate:"required"`
	LastName          string `json:"lastName" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	ParentPhoneNumber string `json:"parentPhoneNumber,omitempty"`
	Fees              string `json:"fees,omitempty"`
	IsActive          bool   `json:"isActive,omitempty"`
}

// UnmarshalJSON accepts "_id" as an alias for "id"
func (s *Student) UnmarshalJSON(data []byte) error {
	type studentAlias Student
	var raw struct {
		studentAlias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Student(raw.studentAlias)
	if s.ID == "" {
		s.ID = raw.MongoID
	}
	return nil
}

// Matches reports whether the student's name or email contains term (case-insensitive)
func (s *Student) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.FirstName), term) ||
		strings.Contains(strings.ToLower(s.LastName), term) ||
		strings.Contains(strings.ToLower(s.Email), term)
}
