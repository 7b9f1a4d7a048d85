package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/hiring-api/config"
	"github.com/target/hiring-api/internal/data"
)

const connectTimeout = 5 * time.Second

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// postgresDSN builds the connection URL with url.URL so special characters
// in credentials are escaped.
func postgresDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectDB establishes a connection to the PostgreSQL database.
func ConnectDB(ctx context.Context, cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "database connected",
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name,
		)
	}

	return db, nil
}

// ConnectRedis connects to Redis in direct, sentinel or cluster mode.
//
//nolint:ireturn // the topology is only known at runtime.
func ConnectRedis(ctx context.Context, cfg DatabaseConfig) (redis.UniversalClient, error) {
	client, desc, err := newRedisClient(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis (%s): %w", desc, pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "redis connected", "target", desc)
	}
	return client, nil
}

type redisTopology int

const (
	redisDirect redisTopology = iota
	redisSentinel
	redisCluster
)

// redisTarget is the resolved connection plan. desc never carries credentials.
type redisTarget struct {
	topology redisTopology
	opts     *redis.UniversalOptions
	desc     string
}

//nolint:ireturn // the topology is only known at runtime.
func newRedisClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	target, err := resolveRedisTarget(cfg)
	if err != nil {
		return nil, "", err
	}
	switch target.topology {
	case redisCluster:
		return redis.NewClusterClient(target.opts.Cluster()), target.desc, nil
	case redisSentinel:
		return redis.NewFailoverClient(target.opts.Failover()), target.desc, nil
	default:
		return redis.NewClient(target.opts.Simple()), target.desc, nil
	}
}

// resolveRedisTarget merges REDIS_URI with the topology-specific node lists.
// Credentials embedded in a redis:// URI win over REDIS_PASSWORD.
func resolveRedisTarget(cfg config.RedisConfig) (redisTarget, error) {
	opts, err := redisURIOptions(cfg.URI, cfg.Password)
	if err != nil {
		return redisTarget{}, err
	}

	switch {
	case cfg.UseCluster:
		if nodes := normalizeAddrs(cfg.ClusterNodes); len(nodes) > 0 {
			opts.Addrs = nodes
		}
		if len(opts.Addrs) == 0 {
			return redisTarget{}, errors.New("redis cluster requires REDIS_CLUSTER_NODES or REDIS_URI")
		}
		return redisTarget{redisCluster, opts, "cluster:" + strings.Join(opts.Addrs, ",")}, nil

	case cfg.UseSentinel:
		nodes := normalizeAddrs(cfg.SentinelNodes)
		if len(nodes) == 0 {
			return redisTarget{}, errors.New("redis sentinel requires REDIS_SENTINEL_NODES")
		}
		master := strings.TrimSpace(cfg.SentinelMasterName)
		if master == "" {
			return redisTarget{}, errors.New("redis sentinel requires REDIS_SENTINEL_MASTER_NAME")
		}
		opts.Addrs = nodes
		opts.MasterName = master
		opts.SentinelPassword = cfg.SentinelPassword
		return redisTarget{redisSentinel, opts, "sentinel:" + master}, nil

	default:
		if len(opts.Addrs) == 0 {
			return redisTarget{}, errors.New("redis direct connection requires REDIS_URI")
		}
		return redisTarget{redisDirect, opts, opts.Addrs[0]}, nil
	}
}

// redisURIOptions accepts either a bare host:port or a redis:// / rediss:// URL.
func redisURIOptions(uri, password string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{Password: password}
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return opts, nil
	case !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://"):
		opts.Addrs = []string{uri}
		return opts, nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	opts.DB = parsed.DB
	opts.TLSConfig = parsed.TLSConfig
	return opts, nil
}

func normalizeAddrs(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// RunMigrations applies the embedded users, jobs and applications schema.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := data.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}

	return nil
}
