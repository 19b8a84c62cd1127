package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type warehouseRepositoryImpl struct {
	db *database.DB
}

func NewWarehouseRepository(db *database.DB) warehouse.WarehouseRepository {
	return &warehouseRepositoryImpl{db: db}
}

const warehouseColumns = `id, code, name, timezone, is_active, created_at, updated_at`

func scanWarehouse(row pgx.Row) (warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	err := row.Scan(&w.ID, &w.Code, &w.Name, &w.Timezone, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// GetByID implements warehouse.WarehouseRepository.
func (r *warehouseRepositoryImpl) GetByID(ctx context.Context, id string) (warehouse.Warehouse, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE id = $1`

	w, err := scanWarehouse(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return warehouse.Warehouse{}, warehouse.ErrWarehouseNotFound
		}
		return warehouse.Warehouse{}, fmt.Errorf("failed to get warehouse %s: %w", id, err)
	}
	return w, nil
}

// ListActive implements warehouse.WarehouseRepository.
func (r *warehouseRepositoryImpl) ListActive(ctx context.Context) ([]warehouse.Warehouse, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE is_active ORDER BY code`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []warehouse.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}
