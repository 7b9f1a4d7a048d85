package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/hiring-api/internal/data"
	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
	"github.com/target/hiring-api/internal/mocks"
	"github.com/target/hiring-api/internal/testutil"
)

func newTestJobService(t *testing.T) (*JobService, *mocks.MockJobRepository) {
	t.Helper()
	repo := mocks.NewMockJobRepository(gomock.NewController(t))
	svc := NewJobService(JobServiceOptions{Repo: repo, Clock: data.NewFixedTimeProvider(testutil.TestTime())})
	return svc, repo
}

func ptr[T any](v T) *T { return &v }

func TestNewJobService_PanicsWithoutRepo(t *testing.T) {
	assert.Panics(t, func() { NewJobService(JobServiceOptions{}) })
}

func TestJobService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, repo := newTestJobService(t)
		repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, job *model.Job) (*model.Job, error) {
			assert.NotEmpty(t, job.ID)
			assert.Equal(t, "emp-1", job.EmployerID)
			assert.Equal(t, "Go Engineer", job.Title)
			assert.Equal(t, model.EmploymentPartTime, job.EmploymentType)
			assert.Equal(t, testutil.TestTime(), job.CreatedAt)
			return job, nil
		})

		job, err := svc.Create(ctx, employer, &model.CreateJobRequest{
			Title:          "  Go Engineer ",
			Description:    "Write Go.",
			Location:       "Remote",
			EmploymentType: "part-time",
		})
		require.NoError(t, err)
		assert.Equal(t, "Go Engineer", job.Title)
	})

	t.Run("job seeker is forbidden", func(t *testing.T) {
		svc, _ := newTestJobService(t)
		_, err := svc.Create(ctx, seeker, &model.CreateJobRequest{})
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("validation", func(t *testing.T) {
		svc, _ := newTestJobService(t)
		_, err := svc.Create(ctx, employer, &model.CreateJobRequest{
			Title: "x", Description: "y", Location: "z", EmploymentType: "Seasonal",
		})
		require.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "employmentType", apperrors.GetField(err))

		_, err = svc.Create(ctx, employer, nil)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		svc, repo := newTestJobService(t)
		repo.EXPECT().Create(ctx, gomock.Any()).Return(nil, errors.New("db down"))
		_, err := svc.Create(ctx, employer, &model.CreateJobRequest{
			Title: "x", Description: "y", Location: "z", EmploymentType: model.EmploymentContract,
		})
		require.ErrorContains(t, err, "create job: db down")
	})
}

func TestJobService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner updates content", func(t *testing.T) {
		svc, repo := newTestJobService(t)
		repo.EXPECT().GetByID(ctx, "job-1").Return(testutil.NewJob("job-1", "emp-1").Build(), nil)
		repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, job *model.Job) (*model.Job, error) {
			assert.Equal(t, "Staff Engineer", job.Title)
			assert.Equal(t, "Minneapolis", job.Location)
			assert.Equal(t, "emp-1", job.EmployerID)
			return job, nil
		})

		job, err := svc.Update(ctx, employer, "job-1", &model.UpdateJobRequest{Title: ptr("Staff Engineer")})
		require.NoError(t, err)
		assert.Equal(t, "Staff Engineer", job.Title)
	})

	t.Run("other employer", func(t *testing.T) {
		svc, repo := newTestJobService(t)
		repo.EXPECT().GetByID(ctx, "job-1").Return(testutil.NewJob("job-1", "emp-1").Build(), nil)
		_, err := svc.Update(ctx, stranger, "job-1", &model.UpdateJobRequest{Title: ptr("Mine now")})
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("empty update", func(t *testing.T) {
		svc, _ := newTestJobService(t)
		_, err := svc.Update(ctx, employer, "job-1", &model.UpdateJobRequest{})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("missing job", func(t *testing.T) {
		svc, repo := newTestJobService(t)
		repo.EXPECT().GetByID(ctx, "nope").Return(nil, apperrors.NotFound("job not found"))
		_, err := svc.Update(ctx, employer, "nope", &model.UpdateJobRequest{Location: ptr("Remote")})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestJobService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		svc, repo := newTestJobService(t)
		repo.EXPECT().GetByID(ctx, "job-1").Return(testutil.NewJob("job-1", "emp-1").Build(), nil)
		repo.EXPECT().Delete(ctx, "job-1").Return(true, nil)
		require.NoError(t, svc.Delete(ctx, employer, "job-1"))
	})

	t.Run("concurrently removed", func(t *testing.T) {
		svc, repo := newTestJobService(t)
		repo.EXPECT().GetByID(ctx, "job-1").Return(testutil.NewJob("job-1", "emp-1").Build(), nil)
		repo.EXPECT().Delete(ctx, "job-1").Return(false, nil)
		assert.True(t, apperrors.IsNotFound(svc.Delete(ctx, employer, "job-1")))
	})

	t.Run("other employer", func(t *testing.T) {
		svc, repo := newTestJobService(t)
		repo.EXPECT().GetByID(ctx, "job-1").Return(testutil.NewJob("job-1", "emp-1").Build(), nil)
		assert.True(t, apperrors.IsForbidden(svc.Delete(ctx, stranger, "job-1")))
	})

	t.Run("admin uses the admin path", func(t *testing.T) {
		svc, _ := newTestJobService(t)
		assert.True(t, apperrors.IsForbidden(svc.Delete(ctx, admin, "job-1")))
	})
}

func TestJobService_DeleteCascadesApplications(t *testing.T) {
	env := newMemoryEnv(t)
	ctx := context.Background()

	app, err := env.apps.Apply(ctx, seeker, "job-1")
	require.NoError(t, err)
	require.NoError(t, env.jobs.Delete(ctx, employer, "job-1"))

	_, err = env.apps.Get(ctx, seeker, app.ID)
	assert.True(t, apperrors.IsNotFound(err))
	mine, err := env.apps.ListForApplicant(ctx, seeker)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestJobService_Search(t *testing.T) {
	env := newMemoryEnv(t)
	ctx := context.Background()
	env.clock.Advance(time.Hour)

	_, err := env.jobs.Create(ctx, employer, &model.CreateJobRequest{
		Title: "Senior Backend Engineer", Description: "Lead.", Location: "Remote", EmploymentType: "Full-time",
	})
	require.NoError(t, err)

	all, err := env.jobs.Search(ctx, model.JobSearch{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Senior Backend Engineer", all[0].Title, "newest first")

	backend, err := env.jobs.Search(ctx, model.JobSearch{Title: "backend"})
	require.NoError(t, err)
	assert.Len(t, backend, 2)

	remote, err := env.jobs.Search(ctx, model.JobSearch{Location: "remote"})
	require.NoError(t, err)
	assert.Len(t, remote, 2)

	contract := model.EmploymentContract
	none, err := env.jobs.Search(ctx, model.JobSearch{EmploymentType: &contract})
	require.NoError(t, err)
	assert.Empty(t, none)

	job, err := env.jobs.GetByID(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, "Designer", job.Title)

	_, err = env.jobs.GetByID(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
