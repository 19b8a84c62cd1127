package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/malfunction"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type exceptionRepositoryImpl struct {
	db *database.DB
}

func NewExceptionRepository(db *database.DB) malfunction.ExceptionRepository {
	return &exceptionRepositoryImpl{db: db}
}

const exceptionColumns = `id, warehouse_id, robot_id, employee_id, error_code, description,
	error_start_time, error_start_at, start_rule, error_end_at, repair_status, source, created_at, updated_at`

func scanException(row pgx.Row) (malfunction.Exception, error) {
	var e malfunction.Exception
	err := row.Scan(
		&e.ID, &e.WarehouseID, &e.RobotID, &e.EmployeeID, &e.ErrorCode, &e.Description,
		&e.ErrorStartTime, &e.ErrorStartAt, &e.StartRule, &e.ErrorEndAt, &e.RepairStatus, &e.Source,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Create implements malfunction.ExceptionRepository.
func (r *exceptionRepositoryImpl) Create(ctx context.Context, e malfunction.Exception) (malfunction.Exception, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO exceptions (
			warehouse_id, robot_id, employee_id, error_code, description,
			error_start_time, error_start_at, start_rule, repair_status, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + exceptionColumns

	created, err := scanException(q.QueryRow(ctx, query,
		e.WarehouseID, e.RobotID, e.EmployeeID, e.ErrorCode, e.Description,
		e.ErrorStartTime, e.ErrorStartAt, string(e.StartRule), e.RepairStatus, e.Source,
	))
	if err != nil {
		return malfunction.Exception{}, fmt.Errorf("failed to create exception: %w", err)
	}
	return created, nil
}

func pgUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

// CreateMany implements malfunction.ExceptionRepository using COPY.
func (r *exceptionRepositoryImpl) CreateMany(ctx context.Context, es []malfunction.Exception) (int64, error) {
	if len(es) == 0 {
		return 0, nil
	}

	q := GetQuerier(ctx, r.db)

	columns := []string{
		"id", "warehouse_id", "robot_id", "employee_id", "error_code", "description",
		"error_start_time", "error_start_at", "start_rule", "repair_status", "source", "created_at", "updated_at",
	}

	rows := make([][]interface{}, 0, len(es))
	for i, e := range es {
		ids := make([]pgtype.UUID, 4)
		for j, s := range []string{e.ID, e.WarehouseID, e.RobotID, e.EmployeeID} {
			id, err := pgUUID(s)
			if err != nil {
				return 0, fmt.Errorf("entry %d: invalid id %q: %w", i, s, err)
			}
			ids[j] = id
		}

		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		rows = append(rows, []interface{}{
			ids[0], ids[1], ids[2], ids[3], e.ErrorCode, e.Description,
			e.ErrorStartTime, e.ErrorStartAt, string(e.StartRule), string(e.RepairStatus), string(e.Source), createdAt, createdAt,
		})
	}

	n, err := q.CopyFrom(ctx, pgx.Identifier{"exceptions"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to import exceptions: %w", err)
	}
	return n, nil
}

// GetByID implements malfunction.ExceptionRepository.
func (r *exceptionRepositoryImpl) GetByID(ctx context.Context, id string, warehouseID string) (malfunction.Exception, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + exceptionColumns + ` FROM exceptions WHERE id = $1 AND warehouse_id = $2`

	e, err := scanException(q.QueryRow(ctx, query, id, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return malfunction.Exception{}, malfunction.ErrExceptionNotFound
		}
		return malfunction.Exception{}, fmt.Errorf("failed to get exception %s: %w", id, err)
	}
	return e, nil
}

// UpdateRepairStatus implements malfunction.ExceptionRepository.
func (r *exceptionRepositoryImpl) UpdateRepairStatus(ctx context.Context, id string, warehouseID string, status malfunction.RepairStatus, endAt *time.Time) (malfunction.Exception, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE exceptions
		SET repair_status = $1, error_end_at = $2, updated_at = NOW()
		WHERE id = $3 AND warehouse_id = $4
		RETURNING ` + exceptionColumns

	e, err := scanException(q.QueryRow(ctx, query, status, endAt, id, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return malfunction.Exception{}, malfunction.ErrExceptionNotFound
		}
		return malfunction.Exception{}, fmt.Errorf("failed to update repair status: %w", err)
	}
	return e, nil
}

// ListPage implements malfunction.ExceptionRepository.
func (r *exceptionRepositoryImpl) ListPage(ctx context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]malfunction.Exception, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + exceptionColumns + `
		FROM exceptions
		WHERE warehouse_id = $1
			AND (
				(error_start_at >= $2 AND error_start_at < $3)
				OR (error_start_at IS NULL AND created_at >= $2 AND created_at < $3)
			)
		ORDER BY created_at, id
		LIMIT $4 OFFSET $5
	`

	rows, err := q.Query(ctx, query, warehouseID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []malfunction.Exception
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		exceptions = append(exceptions, e)
	}
	return exceptions, rows.Err()
}

// CountByRepairStatus implements malfunction.ExceptionRepository.
func (r *exceptionRepositoryImpl) CountByRepairStatus(ctx context.Context, warehouseID string) (map[malfunction.RepairStatus]int, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT repair_status, COUNT(*) FROM exceptions WHERE warehouse_id = $1 GROUP BY repair_status`

	rows, err := q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count exceptions: %w", err)
	}
	defer rows.Close()

	counts := make(map[malfunction.RepairStatus]int)
	for rows.Next() {
		var (
			status malfunction.RepairStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
