//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"

	domainauth "github.com/target/hiring-api/internal/domain/auth"
)

// User is a directory entry for anyone who has signed in.
// ID is the identity provider subject.
type User struct {
	ID        string          `json:"id"        db:"id"`
	FirstName string          `json:"firstName" db:"first_name"`
	LastName  string          `json:"lastName"  db:"last_name"`
	Email     string          `json:"email"     db:"email"`
	Role      domainauth.Role `json:"role"      db:"role"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// DisplayName joins first and last name, falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// Summary projects the fields shown alongside applications.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.DisplayName(), Email: u.Email}
}

// UserSummary is the applicant projection embedded in application views.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserListOptions filters the user directory.
type UserListOptions struct {
	Role   *domainauth.Role
	Limit  int
	Offset int
}
