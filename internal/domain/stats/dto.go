package stats

import (
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

type CurrentShiftStats struct {
	Window             shift.Window       `json:"window"`
	Exceptions         int                `json:"exceptions"`
	ExceptionsByType   map[string]float64 `json:"exceptions_by_type"`
	OpenRepairs        int                `json:"open_repairs"`
	InRepair           int                `json:"in_repair"`
	RobotsByStatus     map[string]int     `json:"robots_by_status"`
	StatusChanges      int                `json:"status_changes"`
	PartsInstalled     int                `json:"parts_installed"`
	PartsRemoved       int                `json:"parts_removed"`
	LowStockParts      int                `json:"low_stock_parts"`
	SkippedRecords     int                `json:"skipped_records"`
	ShiftPointsByStaff map[string]float64 `json:"shift_points_by_staff"`
}

type ScoresRequest struct {
	Month string
}

type ScoreEntry struct {
	Rank         int     `json:"rank"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeCode string  `json:"employee_code"`
	FullName     string  `json:"full_name"`
	Points       float64 `json:"points"`
	Events       int     `json:"events"`
}

type Scoreboard struct {
	Month   string       `json:"month"`
	Entries []ScoreEntry `json:"entries"`
}
