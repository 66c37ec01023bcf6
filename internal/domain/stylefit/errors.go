package stylefit

import (
	"errors"
)

// Sentinel error kinds for this package.
var (
	ErrUnknownProfile = errors.New("unknown position profile")
	ErrNoReference    = errors.New("no reference league")
)
