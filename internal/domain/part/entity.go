package part

import (
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/bucket"
)

type Part struct {
	ID          string
	WarehouseID string
	PartNumber  string
	Name        string
	RobotType   *string
	Stock       int
	MinStock    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Part) LowStock() bool {
	return p.Stock <= p.MinStock
}

type SwapAction string

const (
	// ActionInstall takes parts from stock and fits them to a robot.
	ActionInstall SwapAction = "install"
	// ActionRemove takes parts off a robot and returns them to stock.
	ActionRemove SwapAction = "remove"
)

func (a SwapAction) Valid() bool {
	return a == ActionInstall || a == ActionRemove
}

// StockDelta is the signed stock change for quantity parts.
func (a SwapAction) StockDelta(quantity int) int {
	if a == ActionInstall {
		return -quantity
	}
	return quantity
}

type Swap struct {
	ID          string
	WarehouseID string
	PartID      string
	RobotID     string
	EmployeeID  string
	Action      SwapAction
	Quantity    int
	SwappedAt   time.Time
}

func (s Swap) Stamp() bucket.Stamp {
	return bucket.At(s.SwappedAt)
}
