package explain

import "errors"

// Sentinel kinds for attribution errors.
var (
	ErrExplainFailed = errors.New("attribution failed")
)
