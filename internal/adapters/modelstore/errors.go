package modelstore

import "errors"

// Sentinel kinds for model store errors.
var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInvalidSchema    = errors.New("invalid model schema")
	ErrScoreFailed      = errors.New("model scoring failed")
)
