package repository

import "errors"

// Sentinel kinds for run store errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrNoRun        = errors.New("no run published")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
