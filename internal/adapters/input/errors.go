package input

import "errors"

// Sentinel error kinds for input loading.
var (
	ErrNoMatches     = errors.New("no files match pattern")
	ErrDecode        = errors.New("decode input file")
	ErrUnknownFormat = errors.New("unsupported input file extension")
	ErrNoTeam        = errors.New("reference team not in reference league")
)
