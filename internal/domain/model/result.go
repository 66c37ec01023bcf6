package model

import (
	"time"
)

// GroupScore is one metric group's part of a Total Score.
type GroupScore struct {
	ID           string   `json:"id" yaml:"id"`
	Tier         string   `json:"tier" yaml:"tier"`
	Weight       float64  `json:"weight" yaml:"weight"`
	Value        float64  `json:"value" yaml:"value"`
	Contribution float64  `json:"contribution" yaml:"contribution"`
	Missing      []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Standing is a player's percentile, scale and grade within one population.
type Standing struct {
	Percentile float64 `json:"percentile" yaml:"percentile"`
	Scale      float64 `json:"scale" yaml:"scale"`
	Grade      string  `json:"grade" yaml:"grade"`
}

// ScoreResult is the composite score and population-relative grade of a
// player. Percentile, Scale and Grade are relative to the grading cohort;
// Broad is the same standing across every eligible player of the profile.
type ScoreResult struct {
	TotalScore    float64      `json:"total_score" yaml:"total_score"`
	CoreScore     float64      `json:"core_score" yaml:"core_score"`
	SpecificScore float64      `json:"specific_score" yaml:"specific_score"`
	Percentile    float64      `json:"percentile" yaml:"percentile"`
	Scale         float64      `json:"scale" yaml:"scale"`
	Grade         string       `json:"grade" yaml:"grade"`
	Broad         Standing     `json:"broad" yaml:"broad"`
	Cohort        string       `json:"cohort" yaml:"cohort"`
	Groups        []GroupScore `json:"groups" yaml:"groups"`
	// Missing lists metrics that contributed zero because they were not measured.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// ConsistencyResult classifies a player's metrics against the cohort mean.
type ConsistencyResult struct {
	Above        int      `json:"above" yaml:"above"`
	At           int      `json:"at" yaml:"at"`
	Below        int      `json:"below" yaml:"below"`
	Evaluated    int      `json:"evaluated" yaml:"evaluated"`
	Score        float64  `json:"score" yaml:"score"`
	Percentage   float64  `json:"percentage" yaml:"percentage"`
	BelowMetrics []string `json:"below_metrics,omitempty" yaml:"below_metrics,omitempty"`
}

// StyleFitResult lists metrics where both the player and the reference team
// are elite.
type StyleFitResult struct {
	Count   int      `json:"count" yaml:"count"`
	Metrics []string `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	// Qualified is how many of the profile's style metrics the reference team
	// itself ranks top in.
	Qualified int `json:"qualified" yaml:"qualified"`
}

// TopNFlag is a player's rank on one metric in the broad cohort. Rank 0
// means the metric was not measured.
type TopNFlag struct {
	Metric  string  `json:"metric" yaml:"metric"`
	Rank    int     `json:"rank" yaml:"rank"`
	Value   float64 `json:"value" yaml:"value"`
	Flagged bool    `json:"flagged" yaml:"flagged"`
}

// ProgressionStatus is the state of a player's season-over-season comparison.
type ProgressionStatus string

const (
	NoPriorData     ProgressionStatus = "no_prior_data"
	HasPriorScore   ProgressionStatus = "has_prior_score"
	PositionChanged ProgressionStatus = "position_changed"
)

// MetricChange is the year-over-year change of one raw metric.
type MetricChange struct {
	Metric        string   `json:"metric" yaml:"metric"`
	Prior         float64  `json:"prior" yaml:"prior"`
	Current       float64  `json:"current" yaml:"current"`
	Change        float64  `json:"change" yaml:"change"`
	PercentChange *float64 `json:"percent_change,omitempty" yaml:"percent_change,omitempty"`
}

// ProgressionResult compares the current Total Score with a prior season.
// Numeric fields are nil unless Status is HasPriorScore.
type ProgressionResult struct {
	Status        ProgressionStatus `json:"status" yaml:"status"`
	PriorSeason   int               `json:"prior_season,omitempty" yaml:"prior_season,omitempty"`
	PriorProfile  string            `json:"prior_profile,omitempty" yaml:"prior_profile,omitempty"`
	PriorScore    *float64          `json:"prior_score,omitempty" yaml:"prior_score,omitempty"`
	Delta         *float64          `json:"delta,omitempty" yaml:"delta,omitempty"`
	PercentChange *float64          `json:"percent_change,omitempty" yaml:"percent_change,omitempty"`
	ScaleChange   *float64          `json:"scale_change,omitempty" yaml:"scale_change,omitempty"`
	SeasonsPlayed int               `json:"seasons_played,omitempty" yaml:"seasons_played,omitempty"`
	Rookie        bool              `json:"rookie,omitempty" yaml:"rookie,omitempty"`
	MetricChanges []MetricChange    `json:"metric_changes,omitempty" yaml:"metric_changes,omitempty"`
}

// PriorScore is an already computed Total Score from an earlier season.
type PriorScore struct {
	PlayerID   string
	Season     int
	Profile    string
	TotalScore float64
	Scale      float64
	Metrics    map[string]float64
}

// Bundle is everything the engine reports for one player.
type Bundle struct {
	PlayerID    string             `json:"player_id" yaml:"player_id"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Team        string             `json:"team" yaml:"team"`
	Conference  string             `json:"conference" yaml:"conference"`
	Profile     string             `json:"profile" yaml:"profile"`
	Season      int                `json:"season" yaml:"season"`
	Minutes     float64            `json:"minutes" yaml:"minutes"`
	Score       ScoreResult        `json:"score" yaml:"score"`
	Consistency ConsistencyResult  `json:"consistency" yaml:"consistency"`
	StyleFit    *StyleFitResult    `json:"style_fit,omitempty" yaml:"style_fit,omitempty"`
	TopN        []TopNFlag         `json:"top_n" yaml:"top_n"`
	TopNCount   int                `json:"top_n_count" yaml:"top_n_count"`
	Progression *ProgressionResult `json:"progression,omitempty" yaml:"progression,omitempty"`
	// TeamMinutesPct is nil when the team's minutes are unknown.
	TeamMinutesPct *float64 `json:"team_minutes_pct,omitempty" yaml:"team_minutes_pct,omitempty"`
	Shortlisted    bool     `json:"shortlisted" yaml:"shortlisted"`
}

// WarningKind classifies a recovered data gap.
type WarningKind string

const (
	InsufficientCohort WarningKind = "insufficient_cohort"
	MissingValue       WarningKind = "missing_value"
	IncomparablePeriod WarningKind = "incomparable_period"
	DuplicateRecord    WarningKind = "duplicate_record"
	NoData             WarningKind = "no_data"
	UnknownProfile     WarningKind = "unknown_profile"
)

// Warning reports a degraded data point. Warnings never stop a run.
type Warning struct {
	Kind     WarningKind `json:"kind" yaml:"kind"`
	Profile  string      `json:"profile,omitempty" yaml:"profile,omitempty"`
	Cohort   string      `json:"cohort,omitempty" yaml:"cohort,omitempty"`
	PlayerID string      `json:"player_id,omitempty" yaml:"player_id,omitempty"`
	Metric   string      `json:"metric,omitempty" yaml:"metric,omitempty"`
	Message  string      `json:"message" yaml:"message"`
}

// ProfileSummary describes one profile's pipeline within a run.
type ProfileSummary struct {
	Profile string   `json:"profile" yaml:"profile"`
	Players int      `json:"players" yaml:"players"`
	Cohorts []string `json:"cohorts" yaml:"cohorts"`
	// Shortlisted counts players that made the shortlist.
	Shortlisted int `json:"shortlisted" yaml:"shortlisted"`
	// StyleMetrics are the metrics the reference team ranks top in.
	StyleMetrics []string `json:"style_metrics,omitempty" yaml:"style_metrics,omitempty"`
}

// Report is the deterministic part of a run: identical inputs always
// produce an identical Report.
type Report struct {
	Season   int              `json:"season" yaml:"season"`
	Variant  string           `json:"variant,omitempty" yaml:"variant,omitempty"`
	Profiles []ProfileSummary `json:"profiles" yaml:"profiles"`
	Bundles  []Bundle         `json:"bundles" yaml:"bundles"`
	Warnings []Warning        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Run wraps a Report with its execution metadata.
type Run struct {
	ID        string        `json:"id" yaml:"id"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Report    Report        `json:"report" yaml:"report"`
}
