package scoreboard

import "context"

type ScoreRepository interface {
	// ApplyIncrements reads each current score with a row lock, adds the
	// increment and writes it back. Callers run it inside a transaction.
	ApplyIncrements(ctx context.Context, warehouseID string, month string, incs []Increment) ([]Score, error)

	// List returns the month's scores ordered by points descending.
	List(ctx context.Context, warehouseID string, month string) ([]Score, error)
}
