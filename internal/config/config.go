// Package config defines process configuration and its loading.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional .env file, an optional YAML file and
//   SCOUT_ environment variables, in that order.
package config

import (
	"context"
	"runtime"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatConsole = "console"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount bounds concurrent profile pipelines.
	WorkerCount int `koanf:"worker_count"`

	// Catalog is the metric catalog YAML. Empty uses the embedded default.
	Catalog string `koanf:"catalog"`

	// Variant selects a weighting variant of the catalog, e.g. intent_focused.
	Variant string `koanf:"variant"`

	// Records is a doublestar glob of JSON/YAML player record files.
	Records string `koanf:"records"`

	// History is a glob of earlier-season record files.
	History string `koanf:"history"`

	// Reference is a reference league file for style fit. Optional.
	Reference string `koanf:"reference"`

	// ReferenceTeam overrides the team named in the reference file.
	ReferenceTeam string `koanf:"reference_team"`

	// Season pins the scored season. Zero scores the latest season found.
	Season int `koanf:"season"`

	// TopN overrides the catalog's top_n threshold when positive.
	TopN int `koanf:"top_n"`

	// Output is the report destination; "-" writes to stdout.
	Output string `koanf:"output"`

	// Format is the report encoding: json, yaml or console.
	Format string `koanf:"format"`

	// RescoreSchedule is a cron spec for serve mode, e.g. "@every 6h". Empty disables it.
	RescoreSchedule string `koanf:"rescore_schedule"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RunRetention is how many published runs stay addressable by id.
	RunRetention int `koanf:"run_retention"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		WorkerCount:         runtime.NumCPU(),
		Records:             "data/records/**/*.{json,yaml,yml}",
		Output:              "-",
		Format:              FormatConsole,
		MaxLeaderboardLimit: 100,
		RunRetention:        5,
	}
}
