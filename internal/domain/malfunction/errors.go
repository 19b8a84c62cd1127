package malfunction

import "errors"

var (
	ErrExceptionNotFound       = errors.New("exception not found")
	ErrInvalidRepairTransition = errors.New("repair status transition is not allowed")
)
