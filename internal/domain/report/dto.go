package report

import (
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

type ShiftReportRequest struct {
	Date  string
	Shift string
}

type MonthlyReportRequest struct {
	Month string
}

// Row is one exception in a report, enriched for rendering.
type Row struct {
	ExceptionID    string  `json:"exception_id"`
	Shift          string  `json:"shift"`
	ShiftKind      string  `json:"shift_kind"`
	ShiftDate      string  `json:"shift_date"`
	RobotID        string  `json:"robot_id"`
	RobotSerial    string  `json:"robot_serial"`
	RobotType      string  `json:"robot_type"`
	ErrorCode      string  `json:"error_code"`
	Description    *string `json:"description,omitempty"`
	ErrorStartTime string  `json:"error_start_time"`
	ErrorEndTime   *string `json:"error_end_time,omitempty"`
	RepairStatus   string  `json:"repair_status"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeCode   string  `json:"employee_code"`
	EmployeeName   string  `json:"employee_name"`
}

type SkippedRow struct {
	ExceptionID string `json:"exception_id"`
	Raw         string `json:"raw"`
	Reason      string `json:"reason"`
}

type ShiftReport struct {
	WarehouseID     string             `json:"warehouse_id"`
	Timezone        string             `json:"timezone"`
	Window          shift.Window       `json:"window"`
	Rows            []Row              `json:"rows"`
	RobotTypeTotals map[string]float64 `json:"robot_type_totals"`
	TotalExceptions int                `json:"total_exceptions"`
	Skipped         []SkippedRow       `json:"skipped"`
	AmbiguousCount  int                `json:"ambiguous_count"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// ShiftSummary counts one shift of a monthly report.
type ShiftSummary struct {
	Label           string             `json:"label"`
	Kind            shift.Kind         `json:"kind"`
	Start           time.Time          `json:"start"`
	End             time.Time          `json:"end"`
	Exceptions      int                `json:"exceptions"`
	RobotTypeTotals map[string]float64 `json:"robot_type_totals"`
}

// DaySummary groups the two shifts owned by one local date. Night counts
// include the early hours of the following date.
type DaySummary struct {
	Date       shift.CivilDate `json:"date"`
	DayShift   int             `json:"day_shift"`
	NightShift int             `json:"night_shift"`
	Total      int             `json:"total"`
}

type MonthlyReport struct {
	WarehouseID     string             `json:"warehouse_id"`
	Timezone        string             `json:"timezone"`
	Month           string             `json:"month"`
	Start           time.Time          `json:"start"`
	End             time.Time          `json:"end"`
	Rows            []Row              `json:"rows"`
	Days            []DaySummary       `json:"days"`
	Shifts          []ShiftSummary     `json:"shifts"`
	RobotTypeTotals map[string]float64 `json:"robot_type_totals"`
	TotalExceptions int                `json:"total_exceptions"`
	Skipped         []SkippedRow       `json:"skipped"`
	AmbiguousCount  int                `json:"ambiguous_count"`
	GeneratedAt     time.Time          `json:"generated_at"`
	Cached          bool               `json:"cached"`
}
