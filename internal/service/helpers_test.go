package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/target/hiring-api/internal/adapters/memory"
	"github.com/target/hiring-api/internal/data"
	domainauth "github.com/target/hiring-api/internal/domain/auth"
	"github.com/target/hiring-api/internal/offer"
	"github.com/target/hiring-api/internal/testutil"
)

// memoryEnv wires every service over one in-memory store.
type memoryEnv struct {
	store *memory.Store
	clock *data.FixedTimeProvider
	users *UserService
	jobs  *JobService
	apps  *ApplicationService
	admin *AdminService
}

// newMemoryEnv seeds employers emp-1 (Acme Corp) and emp-2, seekers
// seeker-1 (Ada Lovelace) and seeker-2, admin-1, and jobs job-1 (emp-1)
// and job-2 (emp-2).
func newMemoryEnv(t *testing.T) memoryEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	clock := data.NewFixedTimeProvider(testutil.TestTime())

	for _, u := range []*testutil.UserBuilder{
		testutil.Employer("emp-1").WithName("Acme", "Corp"),
		testutil.Employer("emp-2").WithName("Globex", "Inc"),
		testutil.JobSeeker("seeker-1").WithName("Ada", "Lovelace"),
		testutil.JobSeeker("seeker-2").WithName("Alan", "Turing"),
		testutil.NewUser("admin-1", domainauth.RoleAdmin),
	} {
		_, err := store.Users().Upsert(ctx, u.Build())
		require.NoError(t, err)
	}
	for _, j := range []*testutil.JobBuilder{
		testutil.NewJob("job-1", "emp-1"),
		testutil.NewJob("job-2", "emp-2").WithTitle("Designer").WithLocation("Remote").
			CreatedAt(testutil.TestTime().Add(time.Minute)),
	} {
		_, err := store.Jobs().Create(ctx, j.Build())
		require.NoError(t, err)
	}

	users := NewUserService(UserServiceOptions{Repo: store.Users(), Clock: clock})
	jobs := NewJobService(JobServiceOptions{Repo: store.Jobs(), Clock: clock})
	apps := NewApplicationService(ApplicationServiceOptions{
		Stores: ApplicationStores{Applications: store.Applications(), Jobs: store.Jobs(), Users: store.Users()},
		Offers: offer.NewGenerator(offer.Options{JobBaseURL: "https://jobs.example.com", Now: clock.Now}),
		Clock:  clock,
	})
	return memoryEnv{
		store: store,
		clock: clock,
		users: users,
		jobs:  jobs,
		apps:  apps,
		admin: NewAdminService(AdminServiceOptions{Users: users, Jobs: jobs, Applications: store.Applications()}),
	}
}
