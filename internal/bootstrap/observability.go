package bootstrap

import (
	"context"
	"log/slog"

	"github.com/target/hiring-api/config"
	"github.com/target/hiring-api/internal/observability/statsd"
)

// ConnectMetrics returns a StatsD client, or nil when metrics are disabled.
func ConnectMetrics(ctx context.Context, cfg config.MetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}
	client, err := statsd.NewClient(ctx, statsd.Config{
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "statsd metrics enabled", "addr", cfg.StatsdAddress, "prefix", cfg.Prefix)
	return client, nil
}
