package robot

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/validator"
)

type ChangeStatusRequest struct {
	RobotID string  `json:"-"`
	Status  string  `json:"status"`
	Note    *string `json:"note,omitempty"`
}

func (r *ChangeStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.RobotID) {
		errs = append(errs, validator.ValidationError{
			Field:   "robot_id",
			Message: "robot_id must be a valid UUID",
		})
	}

	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is required",
		})
	} else if !Status(r.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of operational, malfunction, in_repair, retired",
		})
	}

	if r.Note != nil && len(*r.Note) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListRobotsFilter struct {
	Type   *string
	Status *string
}

func (f *ListRobotsFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Type != nil && !RobotType(*f.Type).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of RT_KUBOT, RT_KUBOT_MINI, RT_KUBOT_E2",
		})
	}
	if f.Status != nil && !Status(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is invalid",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RobotResponse struct {
	ID           string    `json:"id"`
	SerialNumber string    `json:"serial_number"`
	Type         RobotType `json:"type"`
	Status       Status    `json:"status"`
	Zone         *string   `json:"zone,omitempty"`
	UpdatedAt    string    `json:"updated_at"`
}

type StatusChangeResponse struct {
	ID         string  `json:"id"`
	RobotID    string  `json:"robot_id"`
	EmployeeID string  `json:"employee_id"`
	FromStatus Status  `json:"from_status"`
	ToStatus   Status  `json:"to_status"`
	Note       *string `json:"note,omitempty"`
	ChangedAt  string  `json:"changed_at"`
	Shift      string  `json:"shift"`
}

func ToResponse(r Robot) RobotResponse {
	return RobotResponse{
		ID:           r.ID,
		SerialNumber: r.SerialNumber,
		Type:         r.Type,
		Status:       r.Status,
		Zone:         r.Zone,
		UpdatedAt:    r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
