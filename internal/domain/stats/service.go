package stats

import "context"

type StatsService interface {
	CurrentShift(ctx context.Context) (CurrentShiftStats, error)
	Scores(ctx context.Context, req ScoresRequest) (Scoreboard, error)
}
