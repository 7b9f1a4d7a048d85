package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreMode selects where jobs, users and applications are kept.
type StoreMode string

const (
	// StoreModePostgres keeps data in PostgreSQL.
	StoreModePostgres StoreMode = "postgres"
	// StoreModeMemory keeps data in process memory; it is lost on restart.
	StoreModeMemory StoreMode = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreMode.
func (s *StoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch StoreMode(v) {
	case StoreModePostgres, StoreModeMemory:
		*s = StoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreMode: %q (valid options: postgres, memory)", v)
	}
}

// OfferConfig controls offer letter generation.
type OfferConfig struct {
	// JobBaseURL prefixes the job link encoded in the offer QR code.
	// Defaults to APP_BASE_URL.
	JobBaseURL string `env:"OFFER_JOB_BASE_URL"`
}

// Sanitize defaults JobBaseURL to baseURL and strips trailing slashes.
func (o *OfferConfig) Sanitize(baseURL string) {
	o.JobBaseURL = strings.TrimRight(strings.TrimSpace(o.JobBaseURL), "/")
	if o.JobBaseURL == "" {
		o.JobBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// ApplyConfig throttles how many applications one job seeker may submit.
type ApplyConfig struct {
	// RateLimit is the number of applications per window; 0 disables throttling.
	RateLimit  int           `env:"APPLY_RATE_LIMIT"  envDefault:"20"`
	RateWindow time.Duration `env:"APPLY_RATE_WINDOW" envDefault:"1h"`
}

const defaultApplyWindow = time.Hour

// Sanitize clamps negative limits to disabled and defaults the window.
func (a *ApplyConfig) Sanitize() {
	if a.RateLimit < 0 {
		a.RateLimit = 0
	}
	if a.RateWindow <= 0 {
		a.RateWindow = defaultApplyWindow
	}
}
