package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an actor's authorization role.
// The string form is persisted in sessions and the users table.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployer  Role = "employer"
	RoleJobSeeker Role = "job_seeker"
	RoleGuest     Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployer, RoleJobSeeker, RoleGuest:
		return true
	default:
		return false
	}
}

// ParseRole normalizes a role string. It accepts the display forms
// ("Job Seeker", "Employer") as well as the canonical snake_case values.
func ParseRole(v string) (Role, bool) {
	n := strings.ToLower(strings.TrimSpace(v))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	r := Role(n)
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable subject identifier
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time
}

// DisplayName joins first and last name, falling back to the email.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(i.FirstName) + " " + strings.TrimSpace(i.LastName))
	if name == "" {
		return i.Email
	}
	return name
}

// Session is the server-side record we persist for an authenticated user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }
