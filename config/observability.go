package config

import "strings"

// ObservabilityConfig configures StatsD metrics for chat traffic and HTTP requests.
type ObservabilityConfig struct {
	// MetricsEnabled turns on the StatsD sink.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"false"`

	// StatsdAddress is the host:port of the StatsD/DogStatsD agent.
	StatsdAddress string `env:"STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`

	// Prefix is prepended to every metric name.
	Prefix string `env:"METRICS_PREFIX" envDefault:"aihub"`

	// Environment is attached to every metric as the env tag when set.
	Environment string `env:"METRICS_ENV"`
}

// Sanitize trims values and disables metrics without an address.
func (c *ObservabilityConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	c.Environment = strings.TrimSpace(c.Environment)
	if c.StatsdAddress == "" {
		c.MetricsEnabled = false
	}
}
