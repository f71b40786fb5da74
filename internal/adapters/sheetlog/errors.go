package sheetlog

import "errors"

// Sentinel kinds for research-log errors.
var (
	ErrAuth         = errors.New("research log auth failed")
	ErrAppendFailed = errors.New("research log append failed")
)
