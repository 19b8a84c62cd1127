package malfunction

import (
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/bucket"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

type RepairStatus string

const (
	RepairOpen     RepairStatus = "open"
	RepairInRepair RepairStatus = "in_repair"
	RepairResolved RepairStatus = "resolved"
)

func (s RepairStatus) Valid() bool {
	return s == RepairOpen || s == RepairInRepair || s == RepairResolved
}

// CanTransition reports whether a repair may move from s to next.
// Resolved is terminal.
func (s RepairStatus) CanTransition(next RepairStatus) bool {
	switch s {
	case RepairOpen:
		return next == RepairInRepair || next == RepairResolved
	case RepairInRepair:
		return next == RepairResolved
	}
	return false
}

type Source string

const (
	SourceManual     Source = "manual"
	SourceController Source = "controller_import"
)

// Exception is a logged robot malfunction.
type Exception struct {
	ID          string
	WarehouseID string
	RobotID     string
	EmployeeID  string
	ErrorCode   string
	Description *string

	// ErrorStartTime is the start time exactly as reported. ErrorStartAt is
	// its resolved instant, nil when the reading could not be resolved.
	// StartRule is the DST rule the resolution needed.
	ErrorStartTime string
	ErrorStartAt   *time.Time
	StartRule      shift.Rule
	ErrorEndAt     *time.Time

	RepairStatus RepairStatus
	Source       Source
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Stamp is the instant an exception is bucketed by.
func (e Exception) Stamp() bucket.Stamp {
	if e.ErrorStartAt != nil {
		return bucket.Resolved(*e.ErrorStartAt, e.StartRule)
	}
	return bucket.Text(e.ErrorStartTime)
}
