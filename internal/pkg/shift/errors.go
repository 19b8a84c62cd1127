package shift

import "errors"

// Reason codes surfaced to callers and reports.
const (
	CodeInvalidTimestamp   = "INVALID_TIMESTAMP"
	CodeInvalidWindowQuery = "INVALID_WINDOW_QUERY"
	CodeAmbiguousLocalTime = "AMBIGUOUS_LOCAL_TIME"
)

var (
	// ErrInvalidWindowQuery is a caller bug: bad month string, date, kind or timezone.
	ErrInvalidWindowQuery = errors.New("invalid window query")

	// ErrInvalidTimestamp marks a record stamp that cannot be placed on the timeline.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
