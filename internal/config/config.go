// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoder: console or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ProviderBaseURL is the scheme and host of the Level Provider and the
	// assignment endpoint.
	ProviderBaseURL string `koanf:"provider_base_url"`

	// LevelsPath and AssignmentsPath are appended to ProviderBaseURL.
	LevelsPath      string `koanf:"levels_path"`
	AssignmentsPath string `koanf:"assignments_path"`

	// RequestTimeoutMS bounds each outbound call. Zero leaves it to the
	// request context.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// FragmentIntervalMS is the period of the confirmation page animation.
	FragmentIntervalMS int `koanf:"fragment_interval_ms"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// MaxInflightSubmissions caps submissions waiting on the assignment
	// endpoint at once. Zero means unbounded.
	MaxInflightSubmissions int `koanf:"max_inflight_submissions"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// LatencyBucketsMS overrides the latency histogram buckets. Empty keeps
	// the built-in layout.
	LatencyBucketsMS []float64 `koanf:"latency_buckets_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "console",
		Addr:               ":8080",
		ProviderBaseURL:    "https://tools.qa.ale.ai",
		LevelsPath:         "/api/tools/candidates/levels",
		AssignmentsPath:    "/api/tools/candidates/assignments",
		RequestTimeoutMS:   0,
		FragmentIntervalMS: 150,
		ShutdownTimeoutMS:  30_000,

		MaxInflightSubmissions: 1000,
		MetricsNamespace:       "handin",
		MetricsSubsystem:       "form",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// FragmentInterval returns FragmentIntervalMS as a duration.
func (c *Config) FragmentInterval() time.Duration {
	return time.Duration(c.FragmentIntervalMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
