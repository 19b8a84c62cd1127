package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/part"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type partRepositoryImpl struct {
	db *database.DB
}

func NewPartRepository(db *database.DB) part.PartRepository {
	return &partRepositoryImpl{db: db}
}

const partColumns = `id, warehouse_id, part_number, name, robot_type, stock, min_stock, created_at, updated_at`

func scanPart(row pgx.Row) (part.Part, error) {
	var p part.Part
	err := row.Scan(&p.ID, &p.WarehouseID, &p.PartNumber, &p.Name, &p.RobotType, &p.Stock, &p.MinStock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetByID implements part.PartRepository.
func (r *partRepositoryImpl) GetByID(ctx context.Context, id string, warehouseID string) (part.Part, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1 AND warehouse_id = $2`

	p, err := scanPart(q.QueryRow(ctx, query, id, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return part.Part{}, part.ErrPartNotFound
		}
		return part.Part{}, fmt.Errorf("failed to get part %s: %w", id, err)
	}
	return p, nil
}

// List implements part.PartRepository.
func (r *partRepositoryImpl) List(ctx context.Context, warehouseID string) ([]part.Part, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + partColumns + ` FROM parts WHERE warehouse_id = $1 ORDER BY part_number`

	rows, err := q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	var parts []part.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// AdjustStock implements part.PartRepository. The guard in the WHERE clause
// keeps concurrent installs from driving stock below zero.
func (r *partRepositoryImpl) AdjustStock(ctx context.Context, id string, warehouseID string, delta int) (part.Part, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE parts
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND warehouse_id = $3 AND stock + $1 >= 0
		RETURNING ` + partColumns

	p, err := scanPart(q.QueryRow(ctx, query, delta, id, warehouseID))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return part.Part{}, fmt.Errorf("failed to adjust stock: %w", err)
	}

	if _, err := r.GetByID(ctx, id, warehouseID); err != nil {
		return part.Part{}, err
	}
	return part.Part{}, part.ErrInsufficientStock
}

// CreateSwap implements part.PartRepository.
func (r *partRepositoryImpl) CreateSwap(ctx context.Context, s part.Swap) (part.Swap, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO part_swaps (warehouse_id, part_id, robot_id, employee_id, action, quantity, swapped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		s.WarehouseID, s.PartID, s.RobotID, s.EmployeeID, s.Action, s.Quantity, s.SwappedAt,
	).Scan(&s.ID)
	if err != nil {
		return part.Swap{}, fmt.Errorf("failed to create part swap: %w", err)
	}
	return s, nil
}

// ListSwapsPage implements part.PartRepository.
func (r *partRepositoryImpl) ListSwapsPage(ctx context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]part.Swap, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, warehouse_id, part_id, robot_id, employee_id, action, quantity, swapped_at
		FROM part_swaps
		WHERE warehouse_id = $1 AND swapped_at >= $2 AND swapped_at < $3
		ORDER BY swapped_at, id
		LIMIT $4 OFFSET $5
	`

	rows, err := q.Query(ctx, query, warehouseID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list part swaps: %w", err)
	}
	defer rows.Close()

	var swaps []part.Swap
	for rows.Next() {
		var s part.Swap
		if err := rows.Scan(&s.ID, &s.WarehouseID, &s.PartID, &s.RobotID, &s.EmployeeID, &s.Action, &s.Quantity, &s.SwappedAt); err != nil {
			return nil, err
		}
		swaps = append(swaps, s)
	}
	return swaps, rows.Err()
}
