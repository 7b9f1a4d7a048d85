package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/target/hiring-api/config"
	"github.com/target/hiring-api/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logStartupInfo(ctx, logger, &cfg)

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer closeInfrastructure(ctx, db, redisClient, logger)

	if db != nil {
		if cfg.Postgres.RunMigrationsOnStart {
			if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
				return err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	deps := bootstrap.ServiceDeps{
		Config:      &cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	}
	metricsClient, err := bootstrap.ConnectMetrics(ctx, cfg.Metrics, logger)
	if err != nil {
		return fmt.Errorf("connect metrics: %w", err)
	}
	if metricsClient != nil {
		defer func() {
			if cerr := metricsClient.Close(); cerr != nil {
				logger.WarnContext(ctx, "close statsd client failed", "error", cerr)
			}
		}()
		deps.Metrics = metricsClient
	}

	services, err := bootstrap.NewServices(deps)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}

	if cfg.DevSeed {
		if err = bootstrap.SeedDevData(ctx, &cfg, services, logger); err != nil {
			logger.WarnContext(ctx, "dev seed incomplete", "error", err)
		}
	}

	return bootstrap.Run(ctx, bootstrap.RunConfig{
		Config:      &cfg,
		Services:    services,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	attrs := []any{
		"store", cfg.Store,
		"auth_mode", cfg.Auth.Mode,
		"redis", cfg.UsesRedis(),
		"addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev,
	}
	if cfg.UsesPostgres() {
		attrs = append(attrs,
			"db_host", cfg.Postgres.Host,
			"db_port", cfg.Postgres.Port,
			"db_name", cfg.Postgres.Name)
	}
	logger.InfoContext(ctx, "starting hiring service", attrs...)
}

// initInfrastructure connects the backends the configuration asks for. Either
// return value may be nil when its backend is disabled.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	}

	var db *sql.DB
	if cfg.UsesPostgres() {
		var err error
		if db, err = bootstrap.ConnectDB(ctx, dbCfg); err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
	}

	if !cfg.UsesRedis() {
		return db, nil, nil
	}
	redisClient, err := bootstrap.ConnectRedis(ctx, dbCfg)
	if err != nil {
		err = fmt.Errorf("connect redis: %w", err)
		if db != nil {
			if cerr := db.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close database: %w", cerr))
			}
		}
		return nil, nil, err
	}
	return db, redisClient, nil
}

func closeInfrastructure(ctx context.Context, db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) {
	if db != nil {
		if err := db.Close(); err != nil {
			logger.ErrorContext(ctx, "close database failed", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", err)
		}
	}
}
