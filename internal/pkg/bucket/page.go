package bucket

import (
	"context"
	"fmt"
	"time"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 1000

// Page is one slice of a paged source. IsLastPage is advisory.
type Page[T any] struct {
	Items      []T
	IsLastPage bool
}

// PageFunc fetches up to limit items starting at offset.
type PageFunc[T any] func(ctx context.Context, offset, limit int) (Page[T], error)

// Drain reads a paged source until a short page (fewer items than
// requested) or a page flagged last, handing every page to sink. It never
// depends on a total count. On error or cancellation the pages already
// handed to sink stay valid; the number of items read is returned.
func Drain[T any](ctx context.Context, fetch PageFunc[T], pageSize int, sink func([]T) error) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := 0
	for offset := 0; ; {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		page, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return total, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		if len(page.Items) > 0 {
			if err := sink(page.Items); err != nil {
				return total, err
			}
		}
		total += len(page.Items)

		if page.IsLastPage || len(page.Items) < pageSize {
			return total, nil
		}
		offset += len(page.Items)
	}
}

// SlicePages serves an in-memory slice as a paged source.
func SlicePages[T any](items []T) PageFunc[T] {
	return func(_ context.Context, offset, limit int) (Page[T], error) {
		if offset >= len(items) {
			return Page[T]{IsLastPage: true}, nil
		}
		end := min(offset+limit, len(items))
		return Page[T]{Items: items[offset:end], IsLastPage: end == len(items)}, nil
	}
}

// RangeFunc lists one page of a warehouse's records in [from, to), the
// shape of the repository listing methods.
type RangeFunc[T any] func(ctx context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]T, error)

// Ranged adapts a range listing to a PageFunc.
func Ranged[T any](list RangeFunc[T], warehouseID string, from, to time.Time) PageFunc[T] {
	return func(ctx context.Context, offset, limit int) (Page[T], error) {
		items, err := list(ctx, warehouseID, from, to, offset, limit)
		if err != nil {
			return Page[T]{}, err
		}
		return Page[T]{Items: items, IsLastPage: len(items) < limit}, nil
	}
}
