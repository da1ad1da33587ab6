package types

import "errors"

// Run errors. The CLI maps each of these to exit code 1.
var (
	ErrUsage    = errors.New("no database path given")
	ErrNotFound = errors.New("file not found")
)

// Encoding errors.
var (
	ErrUnsupportedValue  = errors.New("unsupported column value")
	ErrMalformedDocument = errors.New("malformed export document")
)
