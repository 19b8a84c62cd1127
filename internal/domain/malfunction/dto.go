package malfunction

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/validator"
)

// MaxImportEntries caps one controller import batch.
const MaxImportEntries = 1000

// ========================================
// REQUESTS
// ========================================

type LogExceptionRequest struct {
	RobotID        string  `json:"robot_id"`
	ErrorCode      string  `json:"error_code"`
	Description    *string `json:"description,omitempty"`
	ErrorStartTime string  `json:"error_start_time"`
}

func (r *LogExceptionRequest) Validate() error {
	errs := validateEntry("", r.RobotID, &r.ErrorCode, r.Description, r.ErrorStartTime)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ImportEntry struct {
	RobotID        string  `json:"robot_id"`
	ErrorCode      string  `json:"error_code"`
	Description    *string `json:"description,omitempty"`
	ErrorStartTime string  `json:"error_start_time"`
}

// ImportExceptionsRequest is a batch read from robot controller logs. Start
// times are stored as reported even when they cannot be resolved.
type ImportExceptionsRequest struct {
	Entries []ImportEntry `json:"entries"`
}

func (r *ImportExceptionsRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Entries) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "entries",
			Message: "entries must not be empty",
		})
	} else if len(r.Entries) > MaxImportEntries {
		errs = append(errs, validator.ValidationError{
			Field:   "entries",
			Message: fmt.Sprintf("entries must not exceed %d items", MaxImportEntries),
		})
	}

	for i := range r.Entries {
		e := &r.Entries[i]
		errs = append(errs, validateEntry(fmt.Sprintf("entries[%d].", i), e.RobotID, &e.ErrorCode, e.Description, e.ErrorStartTime)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateEntry(prefix, robotID string, errorCode *string, description *string, startTime string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(robotID) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "robot_id",
			Message: "robot_id must be a valid UUID",
		})
	}

	*errorCode = strings.ToUpper(strings.TrimSpace(*errorCode))
	if validator.IsEmpty(*errorCode) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "error_code",
			Message: "error_code is required",
		})
	} else if !validator.IsValidErrorCode(*errorCode) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "error_code",
			Message: "error_code must be 2-32 characters of A-Z, 0-9, _ or -",
		})
	}

	if description != nil && len(*description) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "description",
			Message: "description must not exceed 2000 characters",
		})
	}

	if validator.IsEmpty(startTime) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + "error_start_time",
			Message: "error_start_time is required",
		})
	}

	return errs
}

type UpdateRepairStatusRequest struct {
	ID           string `json:"-"`
	RepairStatus string `json:"repair_status"`
}

func (r *UpdateRepairStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	r.RepairStatus = strings.ToLower(strings.TrimSpace(r.RepairStatus))
	if !RepairStatus(r.RepairStatus).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "repair_status",
			Message: "repair_status must be one of open, in_repair, resolved",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ListExceptionsRequest selects one shift. Both fields empty means the shift
// in progress.
type ListExceptionsRequest struct {
	Date  string
	Shift string
}

// ========================================
// RESPONSES
// ========================================

type ExceptionResponse struct {
	ID             string       `json:"id"`
	RobotID        string       `json:"robot_id"`
	EmployeeID     string       `json:"employee_id"`
	ErrorCode      string       `json:"error_code"`
	Description    *string      `json:"description,omitempty"`
	ErrorStartTime string       `json:"error_start_time"`
	ErrorStartAt   *string      `json:"error_start_at"`
	AmbiguousStart bool         `json:"ambiguous_start"`
	ErrorEndAt     *string      `json:"error_end_at"`
	RepairStatus   RepairStatus `json:"repair_status"`
	Source         Source       `json:"source"`
	Shift          *string      `json:"shift"`
	CreatedAt      string       `json:"created_at"`
}

type SkippedResponse struct {
	ID     string `json:"id"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

type ListExceptionsResponse struct {
	Window     shift.Window        `json:"window"`
	Exceptions []ExceptionResponse `json:"exceptions"`
	Skipped    []SkippedResponse   `json:"skipped"`
	Ambiguous  int                 `json:"ambiguous"`
}

// AmbiguousResponse is an entry whose local start time occurred twice in
// a fall-back transition. The earlier instant was stored.
type AmbiguousResponse struct {
	ID         string `json:"id"`
	Raw        string `json:"raw"`
	ResolvedAt string `json:"resolved_at"`
	Code       string `json:"code"`
}

type ImportResponse struct {
	Imported   int                 `json:"imported"`
	Unresolved []SkippedResponse   `json:"unresolved"`
	Ambiguous  []AmbiguousResponse `json:"ambiguous"`
}

// ToResponse renders e; shiftLabel is nil when the start time is unresolved.
func ToResponse(e Exception, shiftLabel *string) ExceptionResponse {
	return ExceptionResponse{
		ID:             e.ID,
		RobotID:        e.RobotID,
		EmployeeID:     e.EmployeeID,
		ErrorCode:      e.ErrorCode,
		Description:    e.Description,
		ErrorStartTime: e.ErrorStartTime,
		ErrorStartAt:   formatTime(e.ErrorStartAt),
		AmbiguousStart: e.StartRule == shift.RuleOverlapEarlier,
		ErrorEndAt:     formatTime(e.ErrorEndAt),
		RepairStatus:   e.RepairStatus,
		Source:         e.Source,
		Shift:          shiftLabel,
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
