package config

import "strings"

// MetricsConfig controls StatsD emission of application lifecycle metrics.
type MetricsConfig struct {
	Enabled       bool   `env:"METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"METRICS_PREFIX"         envDefault:"hiring"`
}

// Sanitize trims values and disables emission when no address is left.
func (c *MetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled reports whether metrics should be emitted.
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}
