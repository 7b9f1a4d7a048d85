package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/target/hiring-api/internal/core"
	"github.com/target/hiring-api/internal/data"
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Repo  core.UserRepository // Required
	Clock data.TimeProvider   // Optional
}

// UserService is the user directory. Entries are created and refreshed
// from identity provider logins.
type UserService struct {
	repo  core.UserRepository
	clock data.TimeProvider
}

// NewUserService constructs a UserService. It panics when Repo is nil.
func NewUserService(opts UserServiceOptions) *UserService {
	if opts.Repo == nil {
		panic("UserRepository is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = data.RealTimeProvider{}
	}
	return &UserService{repo: opts.Repo, clock: clock}
}

// GetByID returns a directory entry.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SyncIdentity records the signed-in identity with its mapped role.
func (s *UserService) SyncIdentity(ctx context.Context, id domainauth.Identity, role domainauth.Role) (*model.User, error) {
	if strings.TrimSpace(id.UserID) == "" {
		return nil, apperrors.Validation("identity has no user id")
	}
	now := s.clock.Now()
	u, err := s.repo.Upsert(ctx, &model.User{
		ID:        id.UserID,
		FirstName: strings.TrimSpace(id.FirstName),
		LastName:  strings.TrimSpace(id.LastName),
		Email:     strings.TrimSpace(id.Email),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// List returns directory entries, optionally filtered by role.
func (s *UserService) List(ctx context.Context, opts model.UserListOptions) ([]*model.User, error) {
	users, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
