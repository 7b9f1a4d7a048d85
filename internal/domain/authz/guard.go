// Package authz decides whether an actor may perform an action on a resource.
//
// Decisions are made in two phases. The role phase consults a fixed
// capability table and needs no I/O, so callers run it before loading
// anything. The ownership phase compares the actor with the owner recorded
// on the loaded resource. The guard holds no state and never mutates input.
package authz

import (
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	apperrors "github.com/target/hiring-api/internal/errors"
)

// Actor is the authenticated identity performing an action.
type Actor struct {
	ID   string
	Role domainauth.Role
}

// ActorFromSession builds an Actor from a persisted session.
func ActorFromSession(s *domainauth.Session) Actor {
	if s == nil {
		return Actor{Role: domainauth.RoleGuest}
	}
	return Actor{ID: s.UserID, Role: s.Role}
}

// Action names an operation subject to authorization.
type Action string

const (
	ActionApply                    Action = "application.apply"
	ActionListOwnApplications      Action = "application.list_own"
	ActionReadApplication          Action = "application.read"
	ActionWithdrawApplication      Action = "application.withdraw"
	ActionFetchOffer               Action = "application.offer"
	ActionListEmployerApplications Action = "application.list_employer"
	ActionDecideApplication        Action = "application.decide"

	ActionCreateJob Action = "job.create"
	ActionUpdateJob Action = "job.update"
	ActionDeleteJob Action = "job.delete"

	ActionAdminListUsers        Action = "admin.users.list"
	ActionAdminListJobs         Action = "admin.jobs.list"
	ActionAdminDeleteJob        Action = "admin.jobs.delete"
	ActionAdminListApplications Action = "admin.applications.list"
)

// ResourceKind identifies what a Resource refers to.
type ResourceKind string

const (
	ResourceNone        ResourceKind = ""
	ResourceJob         ResourceKind = "job"
	ResourceApplication ResourceKind = "application"
)

// Resource carries the ownership fact the guard needs. OwnerID is the
// employer for job mutations and decisions, and the applicant for
// application reads, withdrawals and offer retrieval.
type Resource struct {
	Kind    ResourceKind
	ID      string
	OwnerID string
}

// NoResource is passed for actions without an ownership requirement.
var NoResource = Resource{} //nolint:gochecknoglobals // immutable zero value

// JobResource returns the resource used for job mutations and application decisions.
func JobResource(jobID, employerID string) Resource {
	return Resource{Kind: ResourceJob, ID: jobID, OwnerID: employerID}
}

// ApplicationResource returns the resource used for applicant-owned application actions.
func ApplicationResource(applicationID, applicantID string) Resource {
	return Resource{Kind: ResourceApplication, ID: applicationID, OwnerID: applicantID}
}

type capability struct {
	roles []domainauth.Role
	owned bool
}

func (c capability) permits(role domainauth.Role) bool {
	for _, r := range c.roles {
		if r == role {
			return true
		}
	}
	return false
}

func only(owned bool, roles ...domainauth.Role) capability {
	return capability{roles: roles, owned: owned}
}

// capabilities maps each action to the roles allowed to perform it and
// whether the actor must own the resource.
var capabilities = map[Action]capability{ //nolint:gochecknoglobals // read-only policy table
	ActionApply:                    only(false, domainauth.RoleJobSeeker),
	ActionListOwnApplications:      only(false, domainauth.RoleJobSeeker),
	ActionReadApplication:          only(true, domainauth.RoleJobSeeker),
	ActionWithdrawApplication:      only(true, domainauth.RoleJobSeeker),
	ActionFetchOffer:               only(true, domainauth.RoleJobSeeker),
	ActionListEmployerApplications: only(false, domainauth.RoleEmployer),
	ActionDecideApplication:        only(true, domainauth.RoleEmployer),

	ActionCreateJob: only(false, domainauth.RoleEmployer),
	ActionUpdateJob: only(true, domainauth.RoleEmployer),
	ActionDeleteJob: only(true, domainauth.RoleEmployer),

	ActionAdminListUsers:        only(false, domainauth.RoleAdmin),
	ActionAdminListJobs:         only(false, domainauth.RoleAdmin),
	ActionAdminDeleteJob:        only(false, domainauth.RoleAdmin),
	ActionAdminListApplications: only(false, domainauth.RoleAdmin),
}

// Guard evaluates the capability table. The zero value is ready to use.
type Guard struct{}

// New returns a Guard.
func New() Guard { return Guard{} }

// Permits reports whether role appears in the action's permitted role set.
func (Guard) Permits(role domainauth.Role, action Action) bool {
	c, ok := capabilities[action]
	return ok && c.permits(role)
}

// RequiresOwnership reports whether the action compares the actor with the resource owner.
func (Guard) RequiresOwnership(action Action) bool {
	return capabilities[action].owned
}

// CheckRole runs only the role phase.
func (g Guard) CheckRole(actor Actor, action Action) error {
	if actor.ID == "" {
		return apperrors.Forbidden("an authenticated actor is required")
	}
	if !g.Permits(actor.Role, action) {
		return apperrors.Forbidden("role " + string(actor.Role) + " may not perform " + string(action))
	}
	return nil
}

// Authorize runs the role phase and then, for owned actions, the ownership phase.
func (g Guard) Authorize(actor Actor, action Action, res Resource) error {
	if err := g.CheckRole(actor, action); err != nil {
		return err
	}
	if !g.RequiresOwnership(action) {
		return nil
	}
	if res.OwnerID == "" || res.OwnerID != actor.ID {
		return apperrors.Forbidden("actor does not own this " + ownedNoun(res.Kind))
	}
	return nil
}

func ownedNoun(k ResourceKind) string {
	if k == ResourceNone {
		return "resource"
	}
	return string(k)
}
