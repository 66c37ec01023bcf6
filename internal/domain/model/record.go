// Package model contains domain models passed between layers.
package model

import "strings"

// PlayerRecord is one player's raw per-90 statistics for one season.
// A metric absent from Metrics was not measured; it is never read as zero.
// TeamMinutes is the total minutes available to the player's team and
// TeamMinutesPct the share of them played (0-100); both are optional.
type PlayerRecord struct {
	PlayerID       string             `json:"player_id" yaml:"player_id"`
	Name           string             `json:"name,omitempty" yaml:"name,omitempty"`
	Team           string             `json:"team" yaml:"team"`
	Conference     string             `json:"conference" yaml:"conference"`
	Profile        string             `json:"profile" yaml:"profile"`
	Season         int                `json:"season" yaml:"season"`
	Minutes        float64            `json:"minutes" yaml:"minutes"`
	SeasonsPlayed  int                `json:"seasons_played,omitempty" yaml:"seasons_played,omitempty"`
	TeamMinutes    float64            `json:"team_minutes,omitempty" yaml:"team_minutes,omitempty"`
	TeamMinutesPct float64            `json:"team_minutes_pct,omitempty" yaml:"team_minutes_pct,omitempty"`
	Metrics        map[string]float64 `json:"metrics" yaml:"metrics"`
}

// Value returns the raw value of a metric and whether it was measured.
func (r PlayerRecord) Value(metric string) (float64, bool) {
	v, ok := r.Metrics[metric]
	return v, ok
}

// TeamMinutesShare returns the percentage of the team's minutes the player
// was on the pitch. An explicit TeamMinutesPct wins over TeamMinutes; ok is
// false when neither is known.
func (r PlayerRecord) TeamMinutesShare() (pct float64, ok bool) {
	switch {
	case r.TeamMinutesPct > 0:
		return r.TeamMinutesPct, true
	case r.TeamMinutes > 0:
		return r.Minutes / r.TeamMinutes * 100, true
	default:
		return 0, false
	}
}

// PlayerKey is the identity players are matched on across records, seasons
// and runs. Ids differing only in case or surrounding space are one player.
func PlayerKey(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// TeamStats is one team's season statistics inside a reference league.
type TeamStats struct {
	Team  string             `json:"team" yaml:"team"`
	Stats map[string]float64 `json:"stats" yaml:"stats"`
}

// ReferenceLeague is the peer set a target team is ranked in, e.g. a
// professional league whose style a shortlist should fit.
type ReferenceLeague struct {
	Team  string      `json:"team" yaml:"team"`
	Teams []TeamStats `json:"teams" yaml:"teams"`
	// LowerIsBetter lists statistics where the smallest value ranks first.
	LowerIsBetter []string `json:"lower_is_better,omitempty" yaml:"lower_is_better,omitempty"`
}

// Snapshot is the immutable input of one scoring run.
type Snapshot struct {
	// Records holds the season being scored.
	Records []PlayerRecord
	// History holds earlier seasons, used for progression and historical ranges.
	History []PlayerRecord
	// Reference is optional; style fit is skipped without it.
	Reference *ReferenceLeague
}
