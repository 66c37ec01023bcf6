package sampledata

import "errors"

// ErrNoCatalog is returned when a generator is built without a catalog.
var ErrNoCatalog = errors.New("sampledata: catalog is required")
