package warehouse

import (
	"time"
)

type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Timezone  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Scope is a warehouse resolved for one request, with its timezone loaded.
type Scope struct {
	Warehouse  Warehouse
	EmployeeID string
	Location   *time.Location
}

func (s Scope) ID() string {
	return s.Warehouse.ID
}

func (s Scope) Timezone() string {
	return s.Location.String()
}
