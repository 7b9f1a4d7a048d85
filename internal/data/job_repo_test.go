package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/hiring-api/internal/domain/model"
	apperrors "github.com/target/hiring-api/internal/errors"
	"github.com/target/hiring-api/internal/testutil"
)

func seedUser(t *testing.T, db *sql.DB, u *model.User) *model.User {
	t.Helper()
	out, err := NewUserRepo(db).Upsert(context.Background(), u)
	require.NoError(t, err)
	return out
}

func seedJob(t *testing.T, db *sql.DB, j *model.Job) *model.Job {
	t.Helper()
	out, err := NewJobRepo(db).Create(context.Background(), j)
	require.NoError(t, err)
	return out
}

func TestJobRepo_CRUD(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)
		seedUser(t, db, testutil.Employer("emp-1").Build())

		created, err := repo.Create(ctx, testutil.NewJob("job-1", "emp-1").Build())
		require.NoError(t, err)
		assert.Equal(t, "job-1", created.ID)
		assert.Equal(t, model.EmploymentFullTime, created.EmploymentType)
		assert.True(t, created.CreatedAt.Equal(testutil.TestTime()))

		got, err := repo.GetByID(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, created.Title, got.Title)

		got.Title = "Principal Engineer"
		got.EmploymentType = model.EmploymentContract
		got.UpdatedAt = testutil.TestTime().Add(time.Hour)
		updated, err := repo.Update(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, "Principal Engineer", updated.Title)
		assert.Equal(t, model.EmploymentContract, updated.EmploymentType)
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		deleted, err := repo.Delete(ctx, "job-1")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "job-1")
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = repo.GetByID(ctx, "job-1")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestJobRepo_CreateRejectsUnknownEmployer(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		_, err := NewJobRepo(db).Create(context.Background(), testutil.NewJob("job-1", "ghost").Build())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err), "got %v", err)
	})
}

func TestJobRepo_Search(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)
		seedUser(t, db, testutil.Employer("emp-1").Build())
		seedUser(t, db, testutil.Employer("emp-2").Build())

		base := testutil.TestTime()
		seedJob(t, db, testutil.NewJob("j1", "emp-1").WithTitle("Go Developer").WithLocation("Remote").CreatedAt(base).Build())
		seedJob(t, db, testutil.NewJob("j2", "emp-1").WithTitle("Data Analyst").WithLocation("Minneapolis").
			WithEmploymentType(model.EmploymentPartTime).CreatedAt(base.Add(time.Minute)).Build())
		seedJob(t, db, testutil.NewJob("j3", "emp-2").WithTitle("Senior GO engineer").WithLocation("remote, US").
			WithEmploymentType(model.EmploymentContract).CreatedAt(base.Add(2*time.Minute)).Build())
		seedJob(t, db, testutil.NewJob("j4", "emp-2").WithTitle("100% Remote Lead").WithLocation("Anywhere").
			CreatedAt(base.Add(3*time.Minute)).Build())

		ids := func(jobs []*model.Job) []string {
			out := make([]string, len(jobs))
			for i, j := range jobs {
				out[i] = j.ID
			}
			return out
		}

		all, err := repo.Search(ctx, model.JobSearch{})
		require.NoError(t, err)
		assert.Equal(t, []string{"j4", "j3", "j2", "j1"}, ids(all))

		byTitle, err := repo.Search(ctx, model.JobSearch{Title: "go"})
		require.NoError(t, err)
		assert.Equal(t, []string{"j3", "j1"}, ids(byTitle))

		byLocation, err := repo.Search(ctx, model.JobSearch{Location: "REMOTE"})
		require.NoError(t, err)
		assert.Equal(t, []string{"j3", "j1"}, ids(byLocation))

		contract := model.EmploymentContract
		byType, err := repo.Search(ctx, model.JobSearch{Title: "go", EmploymentType: &contract})
		require.NoError(t, err)
		assert.Equal(t, []string{"j3"}, ids(byType))

		literalPercent, err := repo.Search(ctx, model.JobSearch{Title: "100%"})
		require.NoError(t, err)
		assert.Equal(t, []string{"j4"}, ids(literalPercent))

		byEmployer, err := repo.Search(ctx, model.JobSearch{EmployerID: "emp-1", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"j2"}, ids(byEmployer))
	})
}
