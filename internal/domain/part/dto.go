package part

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/validator"
)

const maxQuantity = 1000

type SwapRequest struct {
	PartID   string `json:"part_id"`
	RobotID  string `json:"robot_id"`
	Action   string `json:"action"`
	Quantity int    `json:"quantity"`
}

func (r *SwapRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.PartID) {
		errs = append(errs, validator.ValidationError{
			Field:   "part_id",
			Message: "part_id must be a valid UUID",
		})
	}
	if !validator.IsValidUUID(r.RobotID) {
		errs = append(errs, validator.ValidationError{
			Field:   "robot_id",
			Message: "robot_id must be a valid UUID",
		})
	}

	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
	if !validator.IsInSlice(r.Action, []string{string(ActionInstall), string(ActionRemove)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be install or remove",
		})
	}

	if r.Quantity == 0 {
		r.Quantity = 1
	}
	if r.Quantity < 1 || r.Quantity > maxQuantity {
		errs = append(errs, validator.ValidationError{
			Field:   "quantity",
			Message: "quantity must be between 1 and 1000",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RestockRequest struct {
	PartID   string `json:"-"`
	Quantity int    `json:"quantity"`
}

func (r *RestockRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.PartID) {
		errs = append(errs, validator.ValidationError{
			Field:   "part_id",
			Message: "part_id must be a valid UUID",
		})
	}
	if r.Quantity < 1 || r.Quantity > maxQuantity {
		errs = append(errs, validator.ValidationError{
			Field:   "quantity",
			Message: "quantity must be between 1 and 1000",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PartResponse struct {
	ID         string  `json:"id"`
	PartNumber string  `json:"part_number"`
	Name       string  `json:"name"`
	RobotType  *string `json:"robot_type,omitempty"`
	Stock      int     `json:"stock"`
	MinStock   int     `json:"min_stock"`
	LowStock   bool    `json:"low_stock"`
}

type SwapResponse struct {
	ID         string       `json:"id"`
	PartID     string       `json:"part_id"`
	RobotID    string       `json:"robot_id"`
	EmployeeID string       `json:"employee_id"`
	Action     SwapAction   `json:"action"`
	Quantity   int          `json:"quantity"`
	SwappedAt  string       `json:"swapped_at"`
	Shift      string       `json:"shift"`
	Part       PartResponse `json:"part"`
	Points     float64      `json:"points"`
}

func ToResponse(p Part) PartResponse {
	return PartResponse{
		ID:         p.ID,
		PartNumber: p.PartNumber,
		Name:       p.Name,
		RobotType:  p.RobotType,
		Stock:      p.Stock,
		MinStock:   p.MinStock,
		LowStock:   p.LowStock(),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func ToSwapResponse(s Swap, p Part, shiftLabel string, points float64) SwapResponse {
	return SwapResponse{
		ID:         s.ID,
		PartID:     s.PartID,
		RobotID:    s.RobotID,
		EmployeeID: s.EmployeeID,
		Action:     s.Action,
		Quantity:   s.Quantity,
		SwappedAt:  formatTime(s.SwappedAt),
		Shift:      shiftLabel,
		Part:       ToResponse(p),
		Points:     points,
	}
}
