package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix      = "SCOUT_"
	envConfigFile  = "SCOUT_CONFIG"
	envDotEnvFile  = "SCOUT_ENV_FILE"
	defaultEnvFile = ".env"
)

type loadOptions struct {
	file    string
	envFile string
}

// LoadOption adjusts where Load reads from.
type LoadOption func(*loadOptions)

// WithFile reads path instead of SCOUT_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
		}
	}
}

// WithEnvFile reads a dotenv file instead of SCOUT_ENV_FILE or ./.env.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.envFile = path
		}
	}
}

// Load builds a Config by layering defaults, dotenv, file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. dotenv file: variables not already set in the process environment
//  3. file (YAML) if SCOUT_CONFIG or WithFile is set
//  4. env (prefix SCOUT_)
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if err := loadDotEnv(o.envFile); err != nil {
		return nil, err
	}

	base := New(ctx)
	k := koanf.New(".")

	path := o.file
	if path == "" {
		path = os.Getenv(envConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SCOUT_WORKER_COUNT -> worker_count; keys stay flat to match koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
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

// loadDotEnv applies a dotenv file. A missing default ./.env is ignored; a
// missing file that was asked for explicitly is an error.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(envDotEnvFile)
		explicit = path != ""
	}
	if !explicit {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	if c.WorkerCount < 1 {
		problems = append(problems, "worker_count must be at least 1")
	}
	switch c.Format {
	case FormatJSON, FormatYAML, FormatConsole:
	default:
		problems = append(problems, fmt.Sprintf("format %q must be json, yaml or console", c.Format))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format %q must be text or json", c.LogFormat))
	}
	if c.Season < 0 {
		problems = append(problems, "season must not be negative")
	}
	if c.TopN < 0 {
		problems = append(problems, "top_n must not be negative")
	}
	if c.MaxLeaderboardLimit < 1 {
		problems = append(problems, "max_leaderboard_limit must be at least 1")
	}
	if c.RunRetention < 1 {
		problems = append(problems, "run_retention must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
