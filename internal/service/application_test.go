package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/hiring-api/internal/core"
	"github.com/target/hiring-api/internal/data"
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/domain/authz"
	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
	"github.com/target/hiring-api/internal/mocks"
	"github.com/target/hiring-api/internal/offer"
	"github.com/target/hiring-api/internal/testutil"
)

//nolint:gochecknoglobals // test fixtures
var (
	seeker   = authz.Actor{ID: "seeker-1", Role: domainauth.RoleJobSeeker}
	intruder = authz.Actor{ID: "seeker-2", Role: domainauth.RoleJobSeeker}
	employer = authz.Actor{ID: "emp-1", Role: domainauth.RoleEmployer}
	stranger = authz.Actor{ID: "emp-2", Role: domainauth.RoleEmployer}
	admin    = authz.Actor{ID: "admin-1", Role: domainauth.RoleAdmin}
)

type appMocks struct {
	apps    *mocks.MockApplicationRepository
	jobs    *mocks.MockJobRepository
	users   *mocks.MockUserRepository
	limiter *mocks.MockRateLimiter
	offers  *mocks.MockOfferGenerator
	clock   *data.FixedTimeProvider
}

func newMockedApplicationService(t *testing.T, limit core.RateLimit) (*ApplicationService, appMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := appMocks{
		apps:    mocks.NewMockApplicationRepository(ctrl),
		jobs:    mocks.NewMockJobRepository(ctrl),
		users:   mocks.NewMockUserRepository(ctrl),
		limiter: mocks.NewMockRateLimiter(ctrl),
		offers:  mocks.NewMockOfferGenerator(ctrl),
		clock:   data.NewFixedTimeProvider(testutil.TestTime()),
	}
	svc := NewApplicationService(ApplicationServiceOptions{
		Stores: ApplicationStores{Applications: m.apps, Jobs: m.jobs, Users: m.users},
		Offers: m.offers,
		Apply:  ApplyPolicy{Limiter: m.limiter, Limit: limit},
		Clock:  m.clock,
	})
	return svc, m
}

func TestApplicationService_Apply(t *testing.T) {
	svc, m := newMockedApplicationService(t, core.RateLimit{})
	ctx := context.Background()
	job := testutil.NewJob("job-1", "emp-1").Build()

	m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)
	m.apps.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, app *model.Application) (*model.Application, error) {
			assert.NotEmpty(t, app.ID)
			assert.Equal(t, "job-1", app.JobID)
			assert.Equal(t, "seeker-1", app.ApplicantID)
			assert.Equal(t, model.ApplicationPending, app.Status)
			assert.Equal(t, testutil.TestTime(), app.CreatedAt)
			return app, nil
		})

	app, err := svc.Apply(ctx, seeker, " job-1 ")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationPending, app.Status)
}

func TestApplicationService_Apply_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong role before any lookup", func(t *testing.T) {
		svc, _ := newMockedApplicationService(t, core.RateLimit{})
		_, err := svc.Apply(ctx, employer, "job-1")
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("blank job id", func(t *testing.T) {
		svc, _ := newMockedApplicationService(t, core.RateLimit{})
		_, err := svc.Apply(ctx, seeker, "  ")
		require.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "jobId", apperrors.GetField(err))
	})

	t.Run("unknown job", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.jobs.EXPECT().GetByID(ctx, "nope").Return(nil, apperrors.NotFound("job not found"))
		_, err := svc.Apply(ctx, seeker, "nope")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("duplicate", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(testutil.NewJob("job-1", "emp-1").Build(), nil)
		m.apps.EXPECT().Create(ctx, gomock.Any()).Return(nil, apperrors.Conflict("already applied"))
		_, err := svc.Apply(ctx, seeker, "job-1")
		require.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "already applied")
	})
}

func TestApplicationService_Apply_RateLimit(t *testing.T) {
	ctx := context.Background()
	limit := core.RateLimit{Limit: 5, Window: time.Minute}
	job := testutil.NewJob("job-1", "emp-1").Build()

	t.Run("exceeded", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, limit)
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)
		m.limiter.EXPECT().Allow(ctx, "apply:seeker-1", limit).Return(false, nil)

		_, err := svc.Apply(ctx, seeker, "job-1")
		assert.True(t, apperrors.IsRateLimited(err))
	})

	t.Run("limiter outage fails open", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, limit)
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)
		m.limiter.EXPECT().Allow(ctx, "apply:seeker-1", limit).Return(false, errors.New("redis down"))
		m.apps.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, app *model.Application) (*model.Application, error) { return app, nil })

		_, err := svc.Apply(ctx, seeker, "job-1")
		require.NoError(t, err)
	})
}

func TestApplicationService_Decide(t *testing.T) {
	ctx := context.Background()
	pending := testutil.NewApplication("app-1", "job-1", "seeker-1").Build()
	job := testutil.NewJob("job-1", "emp-1").Build()

	t.Run("accept", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		later := testutil.TestTime().Add(time.Hour)
		m.clock.Set(later)

		accepted := *pending
		accepted.Status = model.ApplicationAccepted
		accepted.UpdatedAt = later

		m.apps.EXPECT().GetByID(ctx, "app-1").Return(pending, nil)
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)
		m.apps.EXPECT().TransitionStatus(ctx, core.TransitionParams{
			ID: "app-1", To: model.ApplicationAccepted, UpdatedAt: later,
		}).Return(&accepted, true, nil)

		got, err := svc.Decide(ctx, employer, "app-1", "ACCEPTED")
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationAccepted, got.Status)
		assert.Equal(t, testutil.TestTime(), got.CreatedAt)
	})

	t.Run("already processed never reaches storage", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		rejected := *pending
		rejected.Status = model.ApplicationRejected
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(&rejected, nil)
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)

		_, err := svc.Decide(ctx, employer, "app-1", "ACCEPTED")
		require.True(t, apperrors.IsInvalidTransition(err))
		assert.Equal(t, "cannot change status of rejected application", err.Error())
	})

	t.Run("decided concurrently", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		accepted := *pending
		accepted.Status = model.ApplicationAccepted
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(pending, nil)
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)
		m.apps.EXPECT().TransitionStatus(ctx, gomock.Any()).Return(&accepted, false, nil)

		_, err := svc.Decide(ctx, employer, "app-1", "REJECTED")
		require.True(t, apperrors.IsInvalidTransition(err))
		assert.Equal(t, "cannot change status of accepted application", err.Error())
	})

	t.Run("status must match exactly", func(t *testing.T) {
		svc, _ := newMockedApplicationService(t, core.RateLimit{})
		_, err := svc.Decide(ctx, employer, "app-1", "accepted")
		require.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "status", apperrors.GetField(err))
	})

	t.Run("not the job owner", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(pending, nil)
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)

		_, err := svc.Decide(ctx, stranger, "app-1", "ACCEPTED")
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("invalid status never reaches storage", func(t *testing.T) {
		svc, _ := newMockedApplicationService(t, core.RateLimit{})
		_, err := svc.Decide(ctx, employer, "app-1", "PENDING")
		require.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "status", apperrors.GetField(err))
	})

	t.Run("seeker may not decide", func(t *testing.T) {
		svc, _ := newMockedApplicationService(t, core.RateLimit{})
		_, err := svc.Decide(ctx, seeker, "app-1", "ACCEPTED")
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("application gone", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(nil, apperrors.NotFound("application not found"))
		_, err := svc.Decide(ctx, employer, "app-1", "REJECTED")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("job deleted underneath", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(pending, nil)
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(nil, apperrors.NotFound("job not found"))
		_, err := svc.Decide(ctx, employer, "app-1", "REJECTED")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestApplicationService_Withdraw(t *testing.T) {
	ctx := context.Background()
	pending := testutil.NewApplication("app-1", "job-1", "seeker-1").Build()

	t.Run("pending", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(pending, nil)
		m.apps.EXPECT().DeleteIfPending(ctx, "app-1").Return(pending, true, nil)
		require.NoError(t, svc.Withdraw(ctx, seeker, "app-1"))
	})

	t.Run("processed", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		accepted := testutil.NewApplication("app-1", "job-1", "seeker-1").WithStatus(model.ApplicationAccepted).Build()
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(accepted, nil)
		m.apps.EXPECT().DeleteIfPending(ctx, "app-1").Return(accepted, false, nil)

		err := svc.Withdraw(ctx, seeker, "app-1")
		require.True(t, apperrors.IsInvalidTransition(err))
		assert.Equal(t, "cannot withdraw processed application", err.Error())
	})

	t.Run("someone else's", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(pending, nil)
		assert.True(t, apperrors.IsForbidden(svc.Withdraw(ctx, intruder, "app-1")))
	})
}

func TestApplicationService_ListForEmployer_StatusFilter(t *testing.T) {
	ctx := context.Background()
	svc, m := newMockedApplicationService(t, core.RateLimit{})

	accepted := model.ApplicationAccepted
	m.apps.EXPECT().List(ctx, model.ApplicationListOptions{EmployerID: "emp-1", Status: &accepted}).
		Return([]*model.ApplicationView{}, nil)
	m.apps.EXPECT().List(ctx, model.ApplicationListOptions{EmployerID: "emp-1"}).
		Return([]*model.ApplicationView{}, nil)

	_, err := svc.ListForEmployer(ctx, employer, "ACCEPTED")
	require.NoError(t, err)
	_, err = svc.ListForEmployer(ctx, employer, "accepted")
	assert.True(t, apperrors.IsValidation(err))
	_, err = svc.ListForEmployer(ctx, employer, "")
	require.NoError(t, err)

	_, err = svc.ListForEmployer(ctx, employer, "WITHDRAWN")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.ListForEmployer(ctx, seeker, "")
	assert.True(t, apperrors.IsForbidden(err))
}

func TestApplicationService_Offer(t *testing.T) {
	ctx := context.Background()
	accepted := testutil.NewApplication("app-1", "job-1", "seeker-1").WithStatus(model.ApplicationAccepted).Build()
	job := testutil.NewJob("job-1", "emp-1").Build()
	applicant := testutil.JobSeeker("seeker-1").WithName("Ada", "Lovelace").Build()
	company := testutil.Employer("emp-1").WithName("Acme", "Corp").Build()

	t.Run("resolves references and generates", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(accepted, nil)
		m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
		m.users.EXPECT().GetByID(gomock.Any(), "emp-1").Return(company, nil)
		m.users.EXPECT().GetByID(gomock.Any(), "seeker-1").Return(applicant, nil)
		m.offers.EXPECT().Generate(offer.Input{
			Application: accepted, Job: job, Applicant: applicant, Employer: company,
		}).Return(&offer.Document{Filename: "Offer_Letter_Ada_Lovelace.pdf", Bytes: []byte("%PDF-")}, nil)

		doc, err := svc.Offer(ctx, seeker, "app-1")
		require.NoError(t, err)
		assert.Equal(t, "Offer_Letter_Ada_Lovelace.pdf", doc.Filename)
	})

	t.Run("not accepted", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(testutil.NewApplication("app-1", "job-1", "seeker-1").Build(), nil)

		_, err := svc.Offer(ctx, seeker, "app-1")
		assert.True(t, apperrors.IsPreconditionFailed(err))
	})

	t.Run("missing employer record", func(t *testing.T) {
		svc, m := newMockedApplicationService(t, core.RateLimit{})
		m.apps.EXPECT().GetByID(ctx, "app-1").Return(accepted, nil)
		m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
		m.users.EXPECT().GetByID(gomock.Any(), "emp-1").Return(nil, apperrors.NotFound("user not found"))
		m.users.EXPECT().GetByID(gomock.Any(), "seeker-1").Return(applicant, nil).AnyTimes()

		_, err := svc.Offer(ctx, seeker, "app-1")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("employer cannot fetch", func(t *testing.T) {
		svc, _ := newMockedApplicationService(t, core.RateLimit{})
		_, err := svc.Offer(ctx, employer, "app-1")
		assert.True(t, apperrors.IsForbidden(err))
	})
}

// The scenarios below run against the in-memory store, which enforces the
// same uniqueness and compare-and-set rules as PostgreSQL.

func TestApplicationLifecycle_Scenarios(t *testing.T) {
	env := newMemoryEnv(t)
	ctx := context.Background()

	// Apply, then apply again.
	app, err := env.apps.Apply(ctx, seeker, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationPending, app.Status)
	_, err = env.apps.Apply(ctx, seeker, "job-1")
	assert.True(t, apperrors.IsConflict(err))

	// Another employer cannot decide.
	_, err = env.apps.Decide(ctx, stranger, app.ID, "ACCEPTED")
	assert.True(t, apperrors.IsForbidden(err))

	// Owner accepts; withdrawal is then refused and status is terminal.
	decided, err := env.apps.Decide(ctx, employer, app.ID, "ACCEPTED")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationAccepted, decided.Status)
	assert.Equal(t, app.CreatedAt, decided.CreatedAt)

	err = env.apps.Withdraw(ctx, seeker, app.ID)
	assert.True(t, apperrors.IsInvalidTransition(err))
	_, err = env.apps.Decide(ctx, employer, app.ID, "REJECTED")
	assert.True(t, apperrors.IsInvalidTransition(err))

	// Offer document carries the resolved references.
	doc, err := env.apps.Offer(ctx, seeker, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Offer_Letter_Ada_Lovelace.pdf", doc.Filename)
	assert.Contains(t, string(doc.Bytes), "Ada Lovelace")
	assert.Contains(t, string(doc.Bytes), "Backend Engineer")
	assert.Contains(t, string(doc.Bytes), "Acme Corp")

	// Nobody else can read it.
	_, err = env.apps.Get(ctx, intruder, app.ID)
	assert.True(t, apperrors.IsForbidden(err))
	_, err = env.apps.Offer(ctx, intruder, app.ID)
	assert.True(t, apperrors.IsForbidden(err))
	_, err = env.apps.Get(ctx, seeker, "missing")
	assert.True(t, apperrors.IsNotFound(err))

	view, err := env.apps.Get(ctx, seeker, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", view.Job.Title)
}

func TestApplicationLifecycle_WithdrawAndReapply(t *testing.T) {
	env := newMemoryEnv(t)
	ctx := context.Background()

	app, err := env.apps.Apply(ctx, seeker, "job-1")
	require.NoError(t, err)
	require.NoError(t, env.apps.Withdraw(ctx, seeker, app.ID))

	_, err = env.apps.Get(ctx, seeker, app.ID)
	assert.True(t, apperrors.IsNotFound(err))

	again, err := env.apps.Apply(ctx, seeker, "job-1")
	require.NoError(t, err)
	assert.NotEqual(t, app.ID, again.ID)

	mine, err := env.apps.ListForApplicant(ctx, seeker)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].Applicant)
	assert.Equal(t, "job-1", mine[0].Job.ID)

	theirs, err := env.apps.ListForEmployer(ctx, employer, "PENDING")
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Ada Lovelace", theirs[0].Applicant.Name)

	none, err := env.apps.ListForEmployer(ctx, stranger, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

type countSink struct {
	mu     sync.Mutex
	counts []map[string]string
}

func (c *countSink) Count(_ string, _ int64, tags map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = append(c.counts, tags)
}

func (c *countSink) Timing(string, time.Duration, map[string]string) {}

func TestApplicationService_EmitsLifecycleMetrics(t *testing.T) {
	env := newMemoryEnv(t)
	ctx := context.Background()
	sink := &countSink{}
	svc := NewApplicationService(ApplicationServiceOptions{
		Stores:  ApplicationStores{Applications: env.store.Applications(), Jobs: env.store.Jobs(), Users: env.store.Users()},
		Clock:   env.clock,
		Metrics: sink,
	})

	app, err := svc.Apply(ctx, seeker, "job-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, employer, app.ID, "REJECTED")
	require.NoError(t, err)
	require.Error(t, svc.Withdraw(ctx, seeker, app.ID))

	require.Len(t, sink.counts, 3)
	assert.Equal(t, map[string]string{"action": "apply", "result": "success", "status": "PENDING"}, sink.counts[0])
	assert.Equal(t, map[string]string{"action": "decide", "result": "success", "status": "REJECTED"}, sink.counts[1])
	assert.Equal(t, map[string]string{"action": "withdraw", "result": "error", "error_class": "invalid_transition"}, sink.counts[2])
}
