package catalog

import (
	"errors"
	"strings"
)

// Sentinel error kinds for this package.
var (
	ErrConfiguration  = errors.New("invalid metric catalog")
	ErrLoadCatalog    = errors.New("load catalog failed")
	ErrUnknownVariant = errors.New("unknown weighting variant")
)

// ConfigurationError lists every structural problem found in a catalog.
// It is fatal: no scoring runs against a catalog that produced one.
type ConfigurationError struct {
	Source   string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConfiguration.Error())
	if e.Source != "" {
		b.WriteString(" ")
		b.WriteString(e.Source)
	}
	b.WriteString(": ")
	b.WriteString(strings.Join(e.Problems, "; "))
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
