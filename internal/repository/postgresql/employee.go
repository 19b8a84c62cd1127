package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string, warehouseID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, warehouse_id, user_id, employee_code, full_name, role, created_at, updated_at
		FROM employees
		WHERE id = $1 AND warehouse_id = $2
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id, warehouseID).Scan(
		&emp.ID, &emp.WarehouseID, &emp.UserID, &emp.EmployeeCode,
		&emp.FullName, &emp.Role, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}
	return emp, nil
}

// GetDisplayInfo implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetDisplayInfo(ctx context.Context, warehouseID string, ids []string) (map[string]employee.DisplayInfo, error) {
	result := make(map[string]employee.DisplayInfo, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, employee_code, full_name
		FROM employees
		WHERE warehouse_id = $1 AND id = ANY($2::uuid[])
	`

	rows, err := q.Query(ctx, query, warehouseID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee display info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var info employee.DisplayInfo
		if err := rows.Scan(&info.ID, &info.EmployeeCode, &info.FullName); err != nil {
			return nil, err
		}
		result[info.ID] = info
	}
	return result, rows.Err()
}
