package scoreboard

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/score"
)

// Score is an employee's running point total for one warehouse month.
type Score struct {
	EmployeeID  string
	WarehouseID string
	Month       string
	Points      float64
	Events      int
	UpdatedAt   time.Time
}

// Increment is the folded change to one employee's score.
type Increment struct {
	EmployeeID string
	Points     float64
	Events     int
}

// IncrementsFrom folds deltas keyed by employee ID. The result is sorted by
// employee ID so writers lock rows in the same order.
func IncrementsFrom(deltas []score.Delta) []Increment {
	totals := score.Accumulate(deltas)
	events := make(map[string]int, len(totals))
	for _, d := range deltas {
		events[d.Key]++
	}

	out := make([]Increment, 0, len(totals))
	for id, points := range totals {
		out = append(out, Increment{EmployeeID: id, Points: points, Events: events[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}
