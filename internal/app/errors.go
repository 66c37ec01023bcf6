package service

import "errors"

// Sentinel error kinds for the scoring service.
var (
	ErrNoCatalog     = errors.New("catalog is required")
	ErrNoEngine      = errors.New("engine is required")
	ErrNoSource      = errors.New("snapshot source is required")
	ErrBadSchedule   = errors.New("invalid rescore schedule")
	ErrAlreadyActive = errors.New("service already started")
)
