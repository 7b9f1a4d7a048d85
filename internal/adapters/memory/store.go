// Package memory provides process-local implementations of the storage,
// session and rate-limit ports. A single mutex guards all tables, so every
// check-then-write (duplicate application check, PENDING compare-and-set,
// cascade on job delete) is atomic.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/target/hiring-api/internal/core"
	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
)

const defaultListLimit = 50

type pairKey struct {
	jobID       string
	applicantID string
}

// Store holds users, jobs and applications.
type Store struct {
	mu    sync.RWMutex
	users map[string]model.User
	jobs  map[string]model.Job
	apps  map[string]model.Application
	pairs map[pairKey]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users: make(map[string]model.User),
		jobs:  make(map[string]model.Job),
		apps:  make(map[string]model.Application),
		pairs: make(map[pairKey]string),
	}
}

// Users returns the user directory view of the store.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Jobs returns the job catalog view of the store.
func (s *Store) Jobs() *JobStore { return &JobStore{s: s} }

// Applications returns the application view of the store.
func (s *Store) Applications() *ApplicationStore { return &ApplicationStore{s: s} }

var (
	_ core.UserRepository        = (*UserStore)(nil)
	_ core.JobRepository         = (*JobStore)(nil)
	_ core.ApplicationRepository = (*ApplicationStore)(nil)
)

// UserStore implements core.UserRepository.
type UserStore struct{ s *Store }

// Upsert inserts the user or refreshes its profile, keeping CreatedAt.
func (u *UserStore) Upsert(_ context.Context, user *model.User) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	next := *user
	if prev, ok := u.s.users[user.ID]; ok {
		next.CreatedAt = prev.CreatedAt
	} else {
		next.CreatedAt = user.UpdatedAt
	}
	u.s.users[user.ID] = next
	return &next, nil
}

// GetByID returns the user or NotFound.
func (u *UserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return &user, nil
}

// List returns users, optionally filtered by role, newest first.
func (u *UserStore) List(_ context.Context, opts model.UserListOptions) ([]*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	out := make([]*model.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		if opts.Role != nil && user.Role != *opts.Role {
			continue
		}
		out = append(out, &user)
	}
	slices.SortFunc(out, func(a, b *model.User) int {
		return newestFirst(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano(), a.ID, b.ID)
	})
	return page(out, opts.Limit, opts.Offset, defaultListLimit), nil
}

// JobStore implements core.JobRepository.
type JobStore struct{ s *Store }

// Create inserts job. The employer must exist.
func (j *JobStore) Create(_ context.Context, job *model.Job) (*model.Job, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	if _, exists := j.s.jobs[job.ID]; exists {
		return nil, apperrors.Conflict("job already exists")
	}
	if _, ok := j.s.users[job.EmployerID]; !ok {
		return nil, apperrors.NotFound("referenced user not found")
	}
	stored := *job
	j.s.jobs[job.ID] = stored
	return &stored, nil
}

// GetByID returns the job or NotFound.
func (j *JobStore) GetByID(_ context.Context, id string) (*model.Job, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	job, ok := j.s.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job not found")
	}
	return &job, nil
}

// Update writes the mutable fields; EmployerID and CreatedAt are kept.
func (j *JobStore) Update(_ context.Context, job *model.Job) (*model.Job, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	cur, ok := j.s.jobs[job.ID]
	if !ok {
		return nil, apperrors.NotFound("job not found")
	}
	cur.Title = job.Title
	cur.Description = job.Description
	cur.Location = job.Location
	cur.EmploymentType = job.EmploymentType
	cur.UpdatedAt = job.UpdatedAt
	j.s.jobs[job.ID] = cur
	return &cur, nil
}

// Delete removes the job and its applications.
func (j *JobStore) Delete(_ context.Context, id string) (bool, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()

	if _, ok := j.s.jobs[id]; !ok {
		return false, nil
	}
	delete(j.s.jobs, id)
	for appID, app := range j.s.apps {
		if app.JobID == id {
			j.s.removeApplication(appID)
		}
	}
	return true, nil
}

// Search mirrors the SQL search: substring matches are case-insensitive.
func (j *JobStore) Search(_ context.Context, q model.JobSearch) ([]*model.Job, error) {
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()

	title := strings.ToLower(strings.TrimSpace(q.Title))
	location := strings.ToLower(strings.TrimSpace(q.Location))

	out := make([]*model.Job, 0)
	for _, job := range j.s.jobs {
		switch {
		case title != "" && !strings.Contains(strings.ToLower(job.Title), title):
			continue
		case location != "" && !strings.Contains(strings.ToLower(job.Location), location):
			continue
		case q.EmploymentType != nil && job.EmploymentType != *q.EmploymentType:
			continue
		case q.EmployerID != "" && job.EmployerID != q.EmployerID:
			continue
		}
		out = append(out, &job)
	}
	slices.SortFunc(out, func(a, b *model.Job) int {
		return newestFirst(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano(), a.ID, b.ID)
	})
	return page(out, q.Limit, q.Offset, defaultListLimit), nil
}

// ApplicationStore implements core.ApplicationRepository.
type ApplicationStore struct{ s *Store }

// Create inserts app unless the applicant already applied to the job.
func (a *ApplicationStore) Create(_ context.Context, app *model.Application) (*model.Application, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.jobs[app.JobID]; !ok {
		return nil, apperrors.NotFound("referenced job not found")
	}
	if _, ok := a.s.users[app.ApplicantID]; !ok {
		return nil, apperrors.NotFound("referenced user not found")
	}
	key := pairKey{jobID: app.JobID, applicantID: app.ApplicantID}
	if _, dup := a.s.pairs[key]; dup {
		return nil, apperrors.Conflict("already applied")
	}
	if _, dup := a.s.apps[app.ID]; dup {
		return nil, apperrors.Conflict("application already exists")
	}

	stored := *app
	a.s.apps[app.ID] = stored
	a.s.pairs[key] = app.ID
	return &stored, nil
}

// GetByID returns the application or NotFound.
func (a *ApplicationStore) GetByID(_ context.Context, id string) (*model.Application, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	app, ok := a.s.apps[id]
	if !ok {
		return nil, apperrors.NotFound("application not found")
	}
	return &app, nil
}

// TransitionStatus sets p.To only if the lifecycle allows the move from the current status.
func (a *ApplicationStore) TransitionStatus(
	_ context.Context,
	p core.TransitionParams,
) (*model.Application, bool, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	app, ok := a.s.apps[p.ID]
	if !ok {
		return nil, false, apperrors.NotFound("application not found")
	}
	if !app.Status.CanTransitionTo(p.To) {
		return &app, false, nil
	}
	app.Status = p.To
	app.UpdatedAt = p.UpdatedAt
	a.s.apps[p.ID] = app
	return &app, true, nil
}

// DeleteIfPending removes the application only if it is still PENDING.
func (a *ApplicationStore) DeleteIfPending(_ context.Context, id string) (*model.Application, bool, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	app, ok := a.s.apps[id]
	if !ok {
		return nil, false, apperrors.NotFound("application not found")
	}
	if app.Status != model.ApplicationPending {
		return &app, false, nil
	}
	a.s.removeApplication(id)
	return &app, true, nil
}

// List joins applications with their job and applicant, newest first.
// A non-positive limit returns everything.
func (a *ApplicationStore) List(_ context.Context, opts model.ApplicationListOptions) ([]*model.ApplicationView, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]*model.ApplicationView, 0)
	for _, app := range a.s.apps {
		job, jobOK := a.s.jobs[app.JobID]
		user, userOK := a.s.users[app.ApplicantID]
		switch {
		case !jobOK || !userOK:
			continue
		case opts.ApplicantID != "" && app.ApplicantID != opts.ApplicantID:
			continue
		case opts.EmployerID != "" && job.EmployerID != opts.EmployerID:
			continue
		case opts.Status != nil && app.Status != *opts.Status:
			continue
		}
		out = append(out, &model.ApplicationView{
			Application: app,
			Job:         job.Summary(),
			Applicant:   user.Summary(),
		})
	}
	slices.SortFunc(out, func(x, y *model.ApplicationView) int {
		return newestFirst(x.CreatedAt.UnixNano(), y.CreatedAt.UnixNano(), x.ID, y.ID)
	})
	return page(out, opts.Limit, opts.Offset, 0), nil
}

// removeApplication must be called with mu held for writing.
func (s *Store) removeApplication(id string) {
	app, ok := s.apps[id]
	if !ok {
		return
	}
	delete(s.apps, id)
	delete(s.pairs, pairKey{jobID: app.JobID, applicantID: app.ApplicantID})
}

func newestFirst(aNanos, bNanos int64, aID, bID string) int {
	if c := cmp.Compare(bNanos, aNanos); c != 0 {
		return c
	}
	return cmp.Compare(aID, bID)
}

// page applies offset and limit. A non-positive limit falls back to
// defaultLimit, and a zero defaultLimit means unbounded.
func page[T any](items []T, limit, offset, defaultLimit int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	offset = max(offset, 0)
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
