// Package types contains common types used across the application
package types

import "github.com/okian/scoutgrade/internal/domain/model"

// PlayerBundle is a player's bundle together with the run it was read from.
type PlayerBundle struct {
	RunID  string       `json:"run_id"`
	Bundle model.Bundle `json:"bundle"`
}

// Entry represents a leaderboard row of one profile.
type Entry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	Name       string  `json:"name,omitempty"`
	Team       string  `json:"team"`
	Conference string  `json:"conference"`
	Cohort     string  `json:"cohort"`
	Score      float64 `json:"score"`
	Percentile float64 `json:"percentile"`
	Scale      float64 `json:"scale"`
	Grade      string  `json:"grade"`
}
