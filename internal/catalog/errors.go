// Package catalog implements the pattern search, lookup, and snippet
// generation pipeline. Every function here is pure: inputs (including the
// pattern collection) arrive as parameters and results are returned without
// touching shared mutable state, so concurrent calls are inherently safe.
package catalog

import "errors"

// Failure conditions surfaced by the catalog core. Handlers translate these
// into protocol status codes; nothing in this package panics or retries.
var (
	// ErrNotFound is returned when a requested pattern id does not exist in
	// the current snapshot.
	ErrNotFound = errors.New("pattern not found")

	// ErrInvalidPattern is returned when a located pattern lacks the data
	// needed to generate a snippet (no examples). This is a catalog
	// data-quality defect, not a caller error.
	ErrInvalidPattern = errors.New("pattern has no examples")

	// ErrUnsupportedModuleType is returned when an unrecognized module-style
	// flag is requested.
	ErrUnsupportedModuleType = errors.New("unsupported module type")
)
