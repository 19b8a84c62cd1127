package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type robotRepositoryImpl struct {
	db *database.DB
}

func NewRobotRepository(db *database.DB) robot.RobotRepository {
	return &robotRepositoryImpl{db: db}
}

const robotColumns = `id, warehouse_id, serial_number, type, status, zone, created_at, updated_at`

func scanRobot(row pgx.Row) (robot.Robot, error) {
	var r robot.Robot
	err := row.Scan(&r.ID, &r.WarehouseID, &r.SerialNumber, &r.Type, &r.Status, &r.Zone, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func collectRobots(rows pgx.Rows) ([]robot.Robot, error) {
	defer rows.Close()

	var robots []robot.Robot
	for rows.Next() {
		r, err := scanRobot(rows)
		if err != nil {
			return nil, err
		}
		robots = append(robots, r)
	}
	return robots, rows.Err()
}

// GetByID implements robot.RobotRepository.
func (r *robotRepositoryImpl) GetByID(ctx context.Context, id string, warehouseID string) (robot.Robot, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + robotColumns + ` FROM robots WHERE id = $1 AND warehouse_id = $2`

	rb, err := scanRobot(q.QueryRow(ctx, query, id, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return robot.Robot{}, robot.ErrRobotNotFound
		}
		return robot.Robot{}, fmt.Errorf("failed to get robot %s: %w", id, err)
	}
	return rb, nil
}

// List implements robot.RobotRepository.
func (r *robotRepositoryImpl) List(ctx context.Context, warehouseID string, filter robot.ListRobotsFilter) ([]robot.Robot, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"warehouse_id = $1"}
	args := []interface{}{warehouseID}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		whereClauses = append(whereClauses, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM robots WHERE %s ORDER BY serial_number`,
		robotColumns, strings.Join(whereClauses, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list robots: %w", err)
	}
	return collectRobots(rows)
}

// GetByIDs implements robot.RobotRepository.
func (r *robotRepositoryImpl) GetByIDs(ctx context.Context, warehouseID string, ids []string) (map[string]robot.Robot, error) {
	result := make(map[string]robot.Robot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + robotColumns + ` FROM robots WHERE warehouse_id = $1 AND id = ANY($2::uuid[])`

	rows, err := q.Query(ctx, query, warehouseID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get robots: %w", err)
	}
	robots, err := collectRobots(rows)
	if err != nil {
		return nil, err
	}
	for _, rb := range robots {
		result[rb.ID] = rb
	}
	return result, nil
}

// CountByStatus implements robot.RobotRepository.
func (r *robotRepositoryImpl) CountByStatus(ctx context.Context, warehouseID string) (map[robot.Status]int, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT status, COUNT(*) FROM robots WHERE warehouse_id = $1 GROUP BY status`

	rows, err := q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count robots: %w", err)
	}
	defer rows.Close()

	counts := make(map[robot.Status]int)
	for rows.Next() {
		var (
			status robot.Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// UpdateStatus implements robot.RobotRepository.
func (r *robotRepositoryImpl) UpdateStatus(ctx context.Context, id string, warehouseID string, status robot.Status) (robot.Robot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE robots
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND warehouse_id = $3
		RETURNING ` + robotColumns

	rb, err := scanRobot(q.QueryRow(ctx, query, status, id, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return robot.Robot{}, robot.ErrRobotNotFound
		}
		return robot.Robot{}, fmt.Errorf("failed to update robot status: %w", err)
	}
	return rb, nil
}

// CreateStatusChange implements robot.RobotRepository.
func (r *robotRepositoryImpl) CreateStatusChange(ctx context.Context, change robot.StatusChange) (robot.StatusChange, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO robot_status_changes (robot_id, warehouse_id, employee_id, from_status, to_status, note, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		change.RobotID, change.WarehouseID, change.EmployeeID,
		change.FromStatus, change.ToStatus, change.Note, change.ChangedAt,
	).Scan(&change.ID)
	if err != nil {
		return robot.StatusChange{}, fmt.Errorf("failed to create status change: %w", err)
	}
	return change, nil
}

// ListStatusChangesPage implements robot.RobotRepository.
func (r *robotRepositoryImpl) ListStatusChangesPage(ctx context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]robot.StatusChange, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, robot_id, warehouse_id, employee_id, from_status, to_status, note, changed_at
		FROM robot_status_changes
		WHERE warehouse_id = $1 AND changed_at >= $2 AND changed_at < $3
		ORDER BY changed_at, id
		LIMIT $4 OFFSET $5
	`

	rows, err := q.Query(ctx, query, warehouseID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}
	defer rows.Close()

	var changes []robot.StatusChange
	for rows.Next() {
		var c robot.StatusChange
		if err := rows.Scan(&c.ID, &c.RobotID, &c.WarehouseID, &c.EmployeeID, &c.FromStatus, &c.ToStatus, &c.Note, &c.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
