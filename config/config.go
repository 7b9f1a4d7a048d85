package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication configuration
//   - database.go: Database and session store configuration
//   - http.go: HTTP server configuration
//   - store.go: Storage mode, offer letters and apply throttling
//   - observability.go: StatsD metrics
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Store selects the repository backend.
	Store StoreMode `env:"STORE" envDefault:"postgres"`

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	Offer OfferConfig
	Apply ApplyConfig

	Metrics MetricsConfig

	// DevSeed loads the dev personas and sample jobs at startup. Development only.
	DevSeed bool `env:"DEV_SEED" envDefault:"false"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Offer.Sanitize(c.HTTP.BaseURL)
	c.Apply.Sanitize()
	c.Metrics.Sanitize()
	c.Auth.Sanitize(c.HTTP.CallbackURL())

	c.detectDevMode()
}

// Validate reports settings that would leave the service unable to start.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Store == StoreModeMemory && !c.IsDev {
		errs = append(errs, errors.New("STORE=memory is only allowed in development (DEV=true)"))
	}
	if c.Auth.Mode == AuthModeMock && !c.IsDev {
		errs = append(errs, errors.New("AUTH_MODE=mock is only allowed in development (DEV=true)"))
	}
	if c.DevSeed && !c.IsDev {
		errs = append(errs, errors.New("DEV_SEED is only allowed in development (DEV=true)"))
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// UsesPostgres reports whether repositories are backed by PostgreSQL.
func (c *AppConfig) UsesPostgres() bool { return c.Store == StoreModePostgres }

// UsesRedis reports whether sessions and apply throttling live in Redis.
func (c *AppConfig) UsesRedis() bool { return c.Redis.Enabled }

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
