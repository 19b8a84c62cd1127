package malfunction

import (
	"context"
	"time"
)

// ExceptionRepository defines data access for exceptions.
// Every method is scoped by warehouseID.
type ExceptionRepository interface {
	Create(ctx context.Context, e Exception) (Exception, error)

	// CreateMany bulk inserts controller imports.
	CreateMany(ctx context.Context, es []Exception) (int64, error)

	GetByID(ctx context.Context, id string, warehouseID string) (Exception, error)
	UpdateRepairStatus(ctx context.Context, id string, warehouseID string, status RepairStatus, endAt *time.Time) (Exception, error)

	// ListPage returns one page of exceptions whose resolved start is in
	// [from, to), plus unresolved ones created in that range. Ordered by
	// created_at then id so consecutive pages never overlap.
	ListPage(ctx context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]Exception, error)

	CountByRepairStatus(ctx context.Context, warehouseID string) (map[RepairStatus]int, error)
}
