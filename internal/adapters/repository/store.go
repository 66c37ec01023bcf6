// Package repository holds published scoring runs and serves read-only
// queries over them.
package repository

import (
	"context"

	"github.com/okian/scoutgrade/internal/domain/model"
	"github.com/okian/scoutgrade/internal/domain/types"
)

// Store provides read/write access to published runs.
type Store interface {
	// Publish makes run the latest. Readers never observe a partial run.
	Publish(ctx context.Context, run model.Run) error

	// Latest returns the most recently published run, or ErrNoRun.
	Latest(ctx context.Context) (model.Run, error)

	// Run returns a retained run by id, or ErrNotFound.
	Run(ctx context.Context, id string) (model.Run, error)

	// Leaderboard returns the latest run's players of a profile ordered by
	// Total Score desc. An empty cohort means every cohort; limit 0 means all.
	Leaderboard(ctx context.Context, profile, cohort string, limit int) ([]types.Entry, error)

	// Player returns a player's bundle and the id of the latest run it was
	// read from, or ErrNotFound. Ids match after model.PlayerKey.
	Player(ctx context.Context, playerID string) (types.PlayerBundle, error)

	// Count returns the number of players in the latest run.
	Count(ctx context.Context) int
}
