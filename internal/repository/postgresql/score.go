package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/scoreboard"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/score"
)

// Stored points are kept at the precision of the smallest award.
const scorePrecision = 2

type scoreRepositoryImpl struct {
	db *database.DB
	tx database.Transactor
}

func NewScoreRepository(db *database.DB) scoreboard.ScoreRepository {
	return &scoreRepositoryImpl{db: db, tx: NewTransactor(db)}
}

// ApplyIncrements implements scoreboard.ScoreRepository. It joins the
// caller's transaction or opens its own.
func (r *scoreRepositoryImpl) ApplyIncrements(ctx context.Context, warehouseID string, month string, incs []scoreboard.Increment) ([]scoreboard.Score, error) {
	var scores []scoreboard.Score
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		for _, inc := range incs {
			_, err := q.Exec(ctx, `
				INSERT INTO employee_scores (warehouse_id, employee_id, month)
				VALUES ($1, $2, $3)
				ON CONFLICT (warehouse_id, employee_id, month) DO NOTHING
			`, warehouseID, inc.EmployeeID, month)
			if err != nil {
				return fmt.Errorf("failed to init score for %s: %w", inc.EmployeeID, err)
			}

			var current scoreboard.Score
			err = q.QueryRow(ctx, `
				SELECT points, events
				FROM employee_scores
				WHERE warehouse_id = $1 AND employee_id = $2 AND month = $3
				FOR UPDATE
			`, warehouseID, inc.EmployeeID, month).Scan(&current.Points, &current.Events)
			if err != nil {
				return fmt.Errorf("failed to lock score for %s: %w", inc.EmployeeID, err)
			}

			next := scoreboard.Score{
				EmployeeID:  inc.EmployeeID,
				WarehouseID: warehouseID,
				Month:       month,
				Points:      score.Round(current.Points+inc.Points, scorePrecision),
				Events:      current.Events + inc.Events,
			}
			err = q.QueryRow(ctx, `
				UPDATE employee_scores
				SET points = $1, events = $2, updated_at = NOW()
				WHERE warehouse_id = $3 AND employee_id = $4 AND month = $5
				RETURNING updated_at
			`, next.Points, next.Events, warehouseID, inc.EmployeeID, month).Scan(&next.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to write score for %s: %w", inc.EmployeeID, err)
			}
			scores = append(scores, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// List implements scoreboard.ScoreRepository.
func (r *scoreRepositoryImpl) List(ctx context.Context, warehouseID string, month string) ([]scoreboard.Score, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, warehouse_id, month, points, events, updated_at
		FROM employee_scores
		WHERE warehouse_id = $1 AND month = $2
		ORDER BY points DESC, employee_id
	`

	rows, err := q.Query(ctx, query, warehouseID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var scores []scoreboard.Score
	for rows.Next() {
		var s scoreboard.Score
		if err := rows.Scan(&s.EmployeeID, &s.WarehouseID, &s.Month, &s.Points, &s.Events, &s.UpdatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
