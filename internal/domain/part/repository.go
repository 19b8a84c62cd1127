package part

import (
	"context"
	"time"
)

type PartRepository interface {
	GetByID(ctx context.Context, id string, warehouseID string) (Part, error)
	List(ctx context.Context, warehouseID string) ([]Part, error)

	// AdjustStock adds delta to the stock in one statement and fails with
	// ErrInsufficientStock when the result would be negative.
	AdjustStock(ctx context.Context, id string, warehouseID string, delta int) (Part, error)

	CreateSwap(ctx context.Context, s Swap) (Swap, error)

	// ListSwapsPage returns swaps with from <= swapped_at < to, ordered by
	// swapped_at then id.
	ListSwapsPage(ctx context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]Swap, error)
}
