package features

import "errors"

// Sentinel kinds for feature encoding errors.
var (
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)
