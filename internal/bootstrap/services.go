package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/hiring-api/config"
	"github.com/target/hiring-api/internal/adapters/authroles"
	"github.com/target/hiring-api/internal/core"
	"github.com/target/hiring-api/internal/data"
	"github.com/target/hiring-api/internal/devseed"
	httpx "github.com/target/hiring-api/internal/http"
	"github.com/target/hiring-api/internal/observability/statsd"
	"github.com/target/hiring-api/internal/offer"
	"github.com/target/hiring-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Users        *service.UserService
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Admin        *service.AdminService
	Auth         *service.AuthService
}

// ServiceDeps contains dependencies for creating services.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB               // Required when the store is postgres
	RedisClient redis.UniversalClient // Optional: sessions fall back to memory
	Logger      *slog.Logger
	Clock       data.TimeProvider // Optional
	Metrics     statsd.Sink       // Optional
}

// NewServices wires repositories, the session backend and every domain service.
func NewServices(deps ServiceDeps) (ServiceContainer, error) {
	if deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps missing AppConfig")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = data.RealTimeProvider{}
	}

	repos, err := buildRepositories(cfg.Store, deps.DB, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	backend := buildSessionBackend(deps.RedisClient, cfg.Redis, logger)

	users := service.NewUserService(service.UserServiceOptions{Repo: repos.Users, Clock: clock})
	jobs := service.NewJobService(service.JobServiceOptions{Repo: repos.Jobs, Clock: clock, Logger: logger})
	applications := service.NewApplicationService(service.ApplicationServiceOptions{
		Stores: service.ApplicationStores{
			Applications: repos.Applications,
			Jobs:         repos.Jobs,
			Users:        repos.Users,
		},
		Offers: offer.NewGenerator(offer.Options{JobBaseURL: cfg.Offer.JobBaseURL, Now: clock.Now}),
		Apply: service.ApplyPolicy{
			Limiter: backend.Limiter,
			Limit:   core.RateLimit{Limit: cfg.Apply.RateLimit, Window: cfg.Apply.RateWindow},
		},
		Clock:   clock,
		Logger:  logger,
		Metrics: deps.Metrics,
	})
	admin := service.NewAdminService(service.AdminServiceOptions{
		Users:        users,
		Jobs:         jobs,
		Applications: repos.Applications,
	})

	auth, err := BuildAuthService(AuthConfig{
		Auth:     cfg.Auth,
		Sessions: backend.Sessions,
		Users:    users,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Users:        users,
		Jobs:         jobs,
		Applications: applications,
		Admin:        admin,
		Auth:         auth,
	}, nil
}

// SeedDevData loads the configured dev personas and their sample jobs.
func SeedDevData(ctx context.Context, cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) error {
	personas, err := cfg.Auth.DevAuth.ParsePersonas()
	if err != nil {
		return fmt.Errorf("parse dev personas: %w", err)
	}
	return devseed.Run(ctx, devseed.Services{
		Users: services.Users,
		Jobs:  services.Jobs,
		Roles: authroles.StaticRoleMapper{
			AdminGroup:     cfg.Auth.AdminGroup,
			EmployerGroup:  cfg.Auth.EmployerGroup,
			JobSeekerGroup: cfg.Auth.JobSeekerGroup,
		},
	}, personas, logger)
}

// RunConfig contains everything Run needs to serve traffic.
type RunConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Run serves HTTP until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Config == nil {
		return errors.New("run config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := cfg.Config

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger: logger,
		HTTP:   app.HTTP,
		Services: httpx.RouterServices{
			Applications: cfg.Services.Applications,
			Jobs:         cfg.Services.Jobs,
			Admin:        cfg.Services.Admin,
			Auth:         cfg.Services.Auth,
			CookieDomain: app.HTTP.CookieDomain,
			CallbackURL:  app.Auth.OAuth.RedirectURL,
			CSRF:         app.HTTP.CSRFEnabled,
			Readiness:    readinessChecks(cfg.DB, cfg.RedisClient),
			Logger:       logger,
		},
	})
	server := newHTTPServer(app.HTTP, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveHTTP(gctx, server, app.HTTP.ShutdownTimeout, logger)
	})
	return g.Wait()
}

func readinessChecks(db *sql.DB, client redis.UniversalClient) map[string]httpx.ReadinessCheck {
	checks := make(map[string]httpx.ReadinessCheck)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
