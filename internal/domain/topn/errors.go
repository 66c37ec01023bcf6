package topn

import (
	"errors"
)

// Sentinel error kinds for this package.
var (
	ErrUnknownProfile = errors.New("unknown position profile")
)
