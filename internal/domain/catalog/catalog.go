// Package catalog declares which metrics each position profile is scored on,
// how they are grouped and weighted, and every named threshold the engine
// uses. A Catalog is immutable once loaded and is passed explicitly to every
// stage of a scoring run.
package catalog

import (
	"sort"
)

// Kind is the unit kind of a metric.
type Kind string

const (
	KindRatePer90  Kind = "rate_per_90"
	KindPercentage Kind = "percentage"
	KindComposite  Kind = "composite"
)

// Tier tags a metric group as a fundamental requirement or a differentiator.
type Tier string

const (
	TierCore     Tier = "core"
	TierSpecific Tier = "specific"
)

// Normalization modes.
const (
	ModeSingleSeason = "single_season"
	ModeHistorical   = "historical"
)

// Grading cohort scopes.
const (
	GradeByConference = "conference"
	GradeByAll        = "all"
)

// Component is one weighted part of a composite metric.
type Component struct {
	Metric string  `koanf:"metric" json:"metric" yaml:"metric"`
	Weight float64 `koanf:"weight" json:"weight" yaml:"weight"`
}

// Metric declares one statistic.
type Metric struct {
	ID            string      `koanf:"id"`
	Name          string      `koanf:"name"`
	Kind          Kind        `koanf:"kind"`
	LowerIsBetter bool        `koanf:"lower_is_better"`
	Aliases       []string    `koanf:"aliases"`
	Components    []Component `koanf:"components"`
}

// IsComposite reports whether the metric combines other metrics.
func (m Metric) IsComposite() bool { return m.Kind == KindComposite }

// DisplayName falls back to the id when no name is configured.
func (m Metric) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// Group is a weighted set of metrics inside a profile.
type Group struct {
	ID      string   `koanf:"id"`
	Tier    Tier     `koanf:"tier"`
	Weight  float64  `koanf:"weight"`
	Metrics []string `koanf:"metrics"`
}

// StyleFitMetric pairs a player metric with the reference-league statistic
// that measures the same thing at team level.
type StyleFitMetric struct {
	Metric    string `koanf:"metric"`
	Reference string `koanf:"reference"`
}

// Profile is a position profile such as "Hybrid CB".
type Profile struct {
	ID       string           `koanf:"id"`
	Name     string           `koanf:"name"`
	Groups   []Group          `koanf:"groups"`
	StyleFit []StyleFitMetric `koanf:"style_fit"`
}

// Thresholds holds every tunable cutoff used by the analyzers.
type Thresholds struct {
	// ConsistencyTolerance is relative to |mean|.
	ConsistencyTolerance float64 `koanf:"consistency_tolerance"`
	// StyleFitPlayerFraction is the share of the broad cohort counted as elite.
	StyleFitPlayerFraction float64 `koanf:"style_fit_player_fraction"`
	// ReferenceTopRank is the reference-league rank that makes a style metric.
	ReferenceTopRank int     `koanf:"reference_top_rank"`
	TopN             int     `koanf:"top_n"`
	WeightTolerance  float64 `koanf:"weight_tolerance"`
	MinMinutes       float64 `koanf:"min_minutes"`
	// ShortlistTeamMinutesPct is the share of team minutes (0-100) a
	// shortlisted player must have played; 0 disables the check.
	ShortlistTeamMinutesPct float64 `koanf:"shortlist_team_minutes_pct"`
	// ShortlistMinGrade is the lowest letter, in both the grading cohort and
	// the broad population, that keeps a player on the shortlist.
	ShortlistMinGrade string `koanf:"shortlist_min_grade"`
}

// GradeBand maps scale values at or above Min to Letter.
type GradeBand struct {
	Letter string  `koanf:"letter"`
	Min    float64 `koanf:"min"`
}

// Normalization selects how cohort ranges are built.
type Normalization struct {
	Mode string `koanf:"mode"`
}

// Cohorts scopes grading and the broad ranking population.
type Cohorts struct {
	Grading string `koanf:"grading"`
	// Eligible lists conferences in the broad population; empty means all.
	Eligible []string `koanf:"eligible"`
}

// Override replaces the component weights of one composite metric.
type Override struct {
	Metric     string      `koanf:"metric"`
	Components []Component `koanf:"components"`
}

// Variant is a named set of composite weight overrides, e.g. a heavier
// weighting of pass volume over pass accuracy.
type Variant struct {
	Name      string     `koanf:"name"`
	Overrides []Override `koanf:"overrides"`
}

// Document is the on-disk shape of a catalog.
type Document struct {
	Version       int           `koanf:"version"`
	Metrics       []Metric      `koanf:"metrics"`
	Profiles      []Profile     `koanf:"profiles"`
	Thresholds    Thresholds    `koanf:"thresholds"`
	Grades        []GradeBand   `koanf:"grades"`
	Normalization Normalization `koanf:"normalization"`
	Cohorts       Cohorts       `koanf:"cohorts"`
	Variants      []Variant     `koanf:"variants"`
}

// DefaultThresholds are applied to any threshold the document omits. A
// threshold that is present keeps its value, zero included.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ConsistencyTolerance:    0.01,
		StyleFitPlayerFraction:  0.20,
		ReferenceTopRank:        3,
		TopN:                    15,
		WeightTolerance:         0.000001,
		MinMinutes:              0,
		ShortlistTeamMinutesPct: 70,
		ShortlistMinGrade:       "B",
	}
}

// DefaultGrades is the decile letter table used when none is configured.
func DefaultGrades() []GradeBand {
	return []GradeBand{
		{Letter: "A", Min: 9},
		{Letter: "B", Min: 8},
		{Letter: "C", Min: 7},
		{Letter: "D", Min: 6},
		{Letter: "F", Min: 0},
	}
}

// Catalog is a validated, read-only metric catalog.
type Catalog struct {
	base       Document
	doc        Document
	variant    string
	metrics    map[string]Metric
	aliases    map[string]string
	profiles   map[string]Profile
	evaluators map[string]Evaluator
	leaves     map[string][]string
}

// Metric returns a metric by canonical id.
func (c *Catalog) Metric(id string) (Metric, bool) {
	m, ok := c.metrics[id]
	return m, ok
}

// Profile returns a profile by id.
func (c *Catalog) Profile(id string) (Profile, bool) {
	p, ok := c.profiles[id]
	return p, ok
}

// Profiles returns all profiles in declaration order.
func (c *Catalog) Profiles() []Profile {
	out := make([]Profile, len(c.doc.Profiles))
	copy(out, c.doc.Profiles)
	return out
}

// ProfileIDs returns profile ids sorted lexically.
func (c *Catalog) ProfileIDs() []string {
	ids := make([]string, 0, len(c.profiles))
	for id := range c.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Thresholds returns the effective thresholds.
func (c *Catalog) Thresholds() Thresholds { return c.doc.Thresholds }

// Grades returns the grade table, highest band first.
func (c *Catalog) Grades() []GradeBand {
	out := make([]GradeBand, len(c.doc.Grades))
	copy(out, c.doc.Grades)
	return out
}

// NormalizationMode returns single_season or historical.
func (c *Catalog) NormalizationMode() string { return c.doc.Normalization.Mode }

// GradingScope returns conference or all.
func (c *Catalog) GradingScope() string { return c.doc.Cohorts.Grading }

// Eligible reports whether a conference belongs to the broad population.
func (c *Catalog) Eligible(conference string) bool {
	if len(c.doc.Cohorts.Eligible) == 0 {
		return true
	}
	for _, e := range c.doc.Cohorts.Eligible {
		if e == conference {
			return true
		}
	}
	return false
}

// Variant returns the active weighting variant name, or "" for the base weights.
func (c *Catalog) Variant() string { return c.variant }

// Variants lists configured variant names.
func (c *Catalog) Variants() []string {
	names := make([]string, 0, len(c.doc.Variants))
	for _, v := range c.doc.Variants {
		names = append(names, v.Name)
	}
	return names
}

// Resolve maps an id, display name or alias to the canonical metric id.
func (c *Catalog) Resolve(name string) (string, bool) {
	id, ok := c.aliases[normalizeKey(name)]
	return id, ok
}

// Evaluator returns the evaluation closure for a metric.
func (c *Catalog) Evaluator(id string) (Evaluator, bool) {
	e, ok := c.evaluators[id]
	return e, ok
}

// Leaves returns the raw statistics a metric reads: itself for a simple
// metric, its components for a composite.
func (c *Catalog) Leaves(id string) []string {
	return append([]string(nil), c.leaves[id]...)
}

// Units returns the metrics a profile is scored on, group by group.
func (c *Catalog) Units(profileID string) []string {
	p, ok := c.profiles[profileID]
	if !ok {
		return nil
	}
	var out []string
	for _, g := range p.Groups {
		out = append(out, g.Metrics...)
	}
	return out
}

// LeafMetrics returns the distinct raw statistics a profile reads, in
// declaration order.
func (c *Catalog) LeafMetrics(profileID string) []string {
	seen := map[string]bool{}
	var out []string
	for _, unit := range c.Units(profileID) {
		for _, leaf := range c.leaves[unit] {
			if !seen[leaf] {
				seen[leaf] = true
				out = append(out, leaf)
			}
		}
	}
	return out
}

// Grade returns the letter for a 1-10 scale value.
func (c *Catalog) Grade(scale float64) string {
	for _, b := range c.doc.Grades {
		if scale >= b.Min {
			return b.Letter
		}
	}
	return c.doc.Grades[len(c.doc.Grades)-1].Letter
}

// GradeAtLeast reports whether letter sits at or above min in the grade
// table. Letters outside the table never qualify.
func (c *Catalog) GradeAtLeast(letter, minLetter string) bool {
	rank := func(l string) int {
		for i, b := range c.doc.Grades {
			if b.Letter == l {
				return i
			}
		}
		return -1
	}
	have, want := rank(letter), rank(minLetter)
	return have >= 0 && want >= 0 && have <= want
}

// Document returns a copy of the effective document.
func (c *Catalog) Document() Document {
	return cloneDocument(c.doc)
}
