package malfunction

import "context"

type ExceptionService interface {
	// LogException stores a manually logged malfunction and credits the
	// logging employee.
	LogException(ctx context.Context, req LogExceptionRequest) (ExceptionResponse, error)

	ImportExceptions(ctx context.Context, req ImportExceptionsRequest) (ImportResponse, error)

	GetException(ctx context.Context, id string) (ExceptionResponse, error)
	UpdateRepairStatus(ctx context.Context, req UpdateRepairStatusRequest) (ExceptionResponse, error)

	// ListByShift lists the exceptions of one shift window.
	ListByShift(ctx context.Context, req ListExceptionsRequest) (ListExceptionsResponse, error)
}
