package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/malfunction"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/part"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrWarehouseRequired):
		Forbidden(w, "Token is not bound to a warehouse")
	case errors.Is(err, auth.ErrEmployeeRequired):
		Forbidden(w, "Token is not bound to an employee")
	case errors.Is(err, auth.ErrSupervisorRequired):
		Forbidden(w, "Supervisor or admin role required")

	// Warehouse and employee errors
	case errors.Is(err, warehouse.ErrWarehouseNotFound):
		NotFound(w, "Warehouse not found")
	case errors.Is(err, warehouse.ErrWarehouseInactive):
		Forbidden(w, "Warehouse is not active")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Fleet errors
	case errors.Is(err, robot.ErrRobotNotFound):
		NotFound(w, "Robot not found")
	case errors.Is(err, robot.ErrRobotRetired):
		Conflict(w, "Robot is retired")
	case errors.Is(err, robot.ErrStatusUnchanged):
		Conflict(w, "Robot already has this status")
	case errors.Is(err, malfunction.ErrExceptionNotFound):
		NotFound(w, "Exception not found")
	case errors.Is(err, malfunction.ErrInvalidRepairTransition):
		Conflict(w, "Repair status transition is not allowed")
	case errors.Is(err, part.ErrPartNotFound):
		NotFound(w, "Part not found")
	case errors.Is(err, part.ErrInsufficientStock):
		Conflict(w, "Insufficient stock")

	// Shift window errors
	case errors.Is(err, shift.ErrInvalidWindowQuery):
		BadRequestWithCode(w, shift.CodeInvalidWindowQuery, err.Error())
	case errors.Is(err, shift.ErrInvalidTimestamp):
		BadRequestWithCode(w, shift.CodeInvalidTimestamp, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
