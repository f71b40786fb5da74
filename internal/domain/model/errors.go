package model

import "errors"

// Sentinel kinds for domain record errors.
var (
	ErrInvalidObservation = errors.New("invalid observation")
)
