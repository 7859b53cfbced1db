package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix      = "HANDIN_"
	envConfigFile  = "HANDIN_CONFIG"
	envDotenvFile  = "HANDIN_ENV_FILE"
	defaultEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HANDIN_CONFIG is set
//  3. env (prefix HANDIN_), including values read from the dotenv file
//
// The dotenv file (HANDIN_ENV_FILE, default .env) never overrides variables
// already present in the process environment. A missing dotenv file is fine.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotenv(ctx); err != nil {
		return nil, err
	}

	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like HANDIN_PROVIDER_BASE_URL -> provider_base_url (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotenv loads the dotenv file into the process environment.
func loadDotenv(_ context.Context) error {
	path := os.Getenv(envDotenvFile)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return nil
	default:
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.ProviderBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: provider_base_url must be an absolute URL, got %q", ErrInvalidConfig, c.ProviderBaseURL)
	}
	if !strings.HasPrefix(c.LevelsPath, "/") || !strings.HasPrefix(c.AssignmentsPath, "/") {
		return fmt.Errorf("%w: levels_path and assignments_path must start with /", ErrInvalidConfig)
	}
	if c.RequestTimeoutMS < 0 {
		return fmt.Errorf("%w: request_timeout_ms must not be negative", ErrInvalidConfig)
	}
	if c.FragmentIntervalMS <= 0 {
		return fmt.Errorf("%w: fragment_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.ShutdownTimeoutMS <= 0 {
		return fmt.Errorf("%w: shutdown_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.MaxInflightSubmissions < 0 {
		return fmt.Errorf("%w: max_inflight_submissions must not be negative", ErrInvalidConfig)
	}
	for i := 1; i < len(c.LatencyBucketsMS); i++ {
		if c.LatencyBucketsMS[i] <= c.LatencyBucketsMS[i-1] {
			return fmt.Errorf("%w: latency_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
