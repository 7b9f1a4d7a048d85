package bootstrap

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/hiring-api/config"
	"github.com/target/hiring-api/internal/adapters/memory"
	redisadapter "github.com/target/hiring-api/internal/adapters/redis"
	"github.com/target/hiring-api/internal/core"
	"github.com/target/hiring-api/internal/data"
	"github.com/target/hiring-api/internal/ports"
)

// repositories is the storage backend selected by STORE.
type repositories struct {
	Users        core.UserRepository
	Jobs         core.JobRepository
	Applications core.ApplicationRepository
}

func buildRepositories(mode config.StoreMode, db *sql.DB, logger *slog.Logger) (repositories, error) {
	switch mode {
	case config.StoreModeMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.New()
		return repositories{Users: store.Users(), Jobs: store.Jobs(), Applications: store.Applications()}, nil
	case config.StoreModePostgres:
		if db == nil {
			return repositories{}, errors.New("postgres store requires a database connection")
		}
		return repositories{
			Users:        data.NewUserRepo(db),
			Jobs:         data.NewJobRepo(db),
			Applications: data.NewApplicationRepo(db),
		}, nil
	default:
		return repositories{}, errors.New("unknown store mode " + string(mode))
	}
}

// sessionBackend pairs the session store with the apply rate limiter. Both
// live in Redis when a client is available so sessions and counts survive
// restarts and are shared between instances.
type sessionBackend struct {
	Sessions ports.SessionStore
	Limiter  core.RateLimiter
}

func buildSessionBackend(client redis.UniversalClient, cfg config.RedisConfig, logger *slog.Logger) sessionBackend {
	if client == nil {
		logger.Warn("redis disabled; sessions and apply limits are kept in process memory")
		return sessionBackend{
			Sessions: memory.NewSessionStore(),
			Limiter:  memory.NewRateLimiter(),
		}
	}
	return sessionBackend{
		Sessions: redisadapter.NewSessionStoreWithPrefix(client, cfg.SessionPrefix),
		Limiter:  redisadapter.NewRateLimiter(client),
	}
}
