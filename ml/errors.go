package ml

import "errors"

var (
	// ErrArtifactLoad marks a model or transformer file that is missing or corrupt.
	ErrArtifactLoad = errors.New("artifact load failure")
	// ErrSchemaMismatch marks a record whose columns or categories differ from the fitted schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrRangeDegenerate is returned when the display range has min == max.
	ErrRangeDegenerate = errors.New("income range is degenerate")
)
