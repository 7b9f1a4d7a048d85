// Package authroles maps identity provider groups to application roles.
package authroles

import (
	domainauth "github.com/target/hiring-api/internal/domain/auth"
)

// StaticRoleMapper assigns a role by group membership.
// Precedence is admin, then employer, then job seeker; anyone else is a guest.
type StaticRoleMapper struct {
	AdminGroup     string
	EmployerGroup  string
	JobSeekerGroup string
}

// Map returns the highest-precedence role any of groups grants.
func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	ordered := []struct {
		group string
		role  domainauth.Role
	}{
		{m.AdminGroup, domainauth.RoleAdmin},
		{m.EmployerGroup, domainauth.RoleEmployer},
		{m.JobSeekerGroup, domainauth.RoleJobSeeker},
	}
	for _, o := range ordered {
		if o.group != "" && contains(groups, o.group) {
			return o.role
		}
	}
	return domainauth.RoleGuest
}

func contains(groups []string, want string) bool {
	for _, g := range groups {
		if g == want {
			return true
		}
	}
	return false
}
