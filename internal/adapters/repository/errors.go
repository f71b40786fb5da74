package repository

import "errors"

// Sentinel kinds for recent-case store errors.
var (
	ErrInvalidLimit = errors.New("invalid recent limit")
)
