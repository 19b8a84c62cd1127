package warehouse

import "context"

type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (Warehouse, error)

	// ListActive is used by background jobs that iterate every warehouse.
	ListActive(ctx context.Context) ([]Warehouse, error)
}
