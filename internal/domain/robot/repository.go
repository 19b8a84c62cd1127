package robot

import (
	"context"
	"time"
)

type RobotRepository interface {
	GetByID(ctx context.Context, id string, warehouseID string) (Robot, error)
	List(ctx context.Context, warehouseID string, filter ListRobotsFilter) ([]Robot, error)

	// GetByIDs returns robots keyed by ID for report enrichment.
	GetByIDs(ctx context.Context, warehouseID string, ids []string) (map[string]Robot, error)

	// CountByStatus counts the warehouse fleet per status.
	CountByStatus(ctx context.Context, warehouseID string) (map[Status]int, error)

	UpdateStatus(ctx context.Context, id string, warehouseID string, status Status) (Robot, error)
	CreateStatusChange(ctx context.Context, change StatusChange) (StatusChange, error)

	// ListStatusChangesPage returns changes with from <= changed_at < to,
	// ordered by changed_at then id.
	ListStatusChangesPage(ctx context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]StatusChange, error)
}
