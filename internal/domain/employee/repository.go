package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, warehouseID string) (Employee, error)

	// GetDisplayInfo returns display info keyed by employee ID. Unknown IDs are
	// absent from the map rather than an error.
	GetDisplayInfo(ctx context.Context, warehouseID string, ids []string) (map[string]DisplayInfo, error)
}
