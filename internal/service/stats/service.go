package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/malfunction"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/part"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/scoreboard"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/stats"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/bucket"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/score"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type StatsServiceImpl struct {
	exceptionRepo malfunction.ExceptionRepository
	robotRepo     robot.RobotRepository
	partRepo      part.PartRepository
	scoreRepo     scoreboard.ScoreRepository
	employeeRepo  employee.EmployeeRepository
	locator       warehouse.ScopeLocator
	resolver      *shift.Resolver
	clock         clock.Clock
	pageSize      int
}

func NewStatsService(
	exceptionRepo malfunction.ExceptionRepository,
	robotRepo robot.RobotRepository,
	partRepo part.PartRepository,
	scoreRepo scoreboard.ScoreRepository,
	employeeRepo employee.EmployeeRepository,
	locator warehouse.ScopeLocator,
	resolver *shift.Resolver,
	clk clock.Clock,
	pageSize int,
) stats.StatsService {
	return &StatsServiceImpl{
		exceptionRepo: exceptionRepo,
		robotRepo:     robotRepo,
		partRepo:      partRepo,
		scoreRepo:     scoreRepo,
		employeeRepo:  employeeRepo,
		locator:       locator,
		resolver:      resolver,
		clock:         clk,
		pageSize:      pageSize,
	}
}

// CurrentShift summarizes the running shift of the caller's warehouse.
// Each source is read by its own goroutine.
func (s *StatsServiceImpl) CurrentShift(ctx context.Context) (stats.CurrentShiftStats, error) {
	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return stats.CurrentShiftStats{}, err
	}

	window := s.resolver.ClassifyIn(s.clock.Now(), scope.Location).Window
	agg, err := bucket.New(s.resolver, scope.Timezone(), malfunction.Exception.Stamp)
	if err != nil {
		return stats.CurrentShiftStats{}, err
	}
	changeAgg, err := bucket.New(s.resolver, scope.Timezone(), robot.StatusChange.Stamp)
	if err != nil {
		return stats.CurrentShiftStats{}, err
	}
	swapAgg, err := bucket.New(s.resolver, scope.Timezone(), part.Swap.Stamp)
	if err != nil {
		return stats.CurrentShiftStats{}, err
	}

	var (
		result      bucket.Result[malfunction.Exception]
		changes     bucket.Result[robot.StatusChange]
		swaps       bucket.Result[part.Swap]
		robotCounts map[robot.Status]int
		repairs     map[malfunction.RepairStatus]int
		parts       []part.Part
		types       map[string]robot.Robot
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Exceptions started in the shift, with robot types for the breakdown
	g.Go(func() error {
		collector := agg.ShiftCollector(window)
		fetch := bucket.Ranged[malfunction.Exception](s.exceptionRepo.ListPage, scope.ID(), window.Start, window.End)
		if _, err := bucket.Drain(gCtx, fetch, s.pageSize, collector.Sink); err != nil {
			return fmt.Errorf("failed to load exceptions: %w", err)
		}
		result = collector.Result()

		robotIDs := make([]string, 0, len(result.Records))
		for _, e := range result.Records {
			robotIDs = append(robotIDs, e.RobotID)
		}
		robots, err := s.robotRepo.GetByIDs(gCtx, scope.ID(), robotIDs)
		if err != nil {
			return fmt.Errorf("failed to load robots: %w", err)
		}
		types = robots
		return nil
	})

	// 2. Robot status changes in the shift
	g.Go(func() error {
		collector := changeAgg.ShiftCollector(window)
		fetch := bucket.Ranged[robot.StatusChange](s.robotRepo.ListStatusChangesPage, scope.ID(), window.Start, window.End)
		if _, err := bucket.Drain(gCtx, fetch, s.pageSize, collector.Sink); err != nil {
			return fmt.Errorf("failed to load status changes: %w", err)
		}
		changes = collector.Result()
		return nil
	})

	// 3. Part swaps in the shift
	g.Go(func() error {
		collector := swapAgg.ShiftCollector(window)
		fetch := bucket.Ranged[part.Swap](s.partRepo.ListSwapsPage, scope.ID(), window.Start, window.End)
		if _, err := bucket.Drain(gCtx, fetch, s.pageSize, collector.Sink); err != nil {
			return fmt.Errorf("failed to load part swaps: %w", err)
		}
		swaps = collector.Result()
		return nil
	})

	// 4. Fleet and repair snapshot
	g.Go(func() error {
		var err error
		if robotCounts, err = s.robotRepo.CountByStatus(gCtx, scope.ID()); err != nil {
			return fmt.Errorf("failed to count robots: %w", err)
		}
		if repairs, err = s.exceptionRepo.CountByRepairStatus(gCtx, scope.ID()); err != nil {
			return fmt.Errorf("failed to count repairs: %w", err)
		}
		return nil
	})

	// 5. Stock levels
	g.Go(func() error {
		var err error
		if parts, err = s.partRepo.List(gCtx, scope.ID()); err != nil {
			return fmt.Errorf("failed to list parts: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats.CurrentShiftStats{}, err
	}

	resp := stats.CurrentShiftStats{
		Window:         window,
		Exceptions:     len(result.Records),
		OpenRepairs:    repairs[malfunction.RepairOpen],
		InRepair:       repairs[malfunction.RepairInRepair],
		RobotsByStatus: make(map[string]int, len(robot.Statuses)),
		StatusChanges:  len(changes.Records),
		SkippedRecords: len(result.Skipped) + len(changes.Skipped) + len(swaps.Skipped),
	}
	for _, st := range robot.Statuses {
		resp.RobotsByStatus[string(st)] = robotCounts[st]
	}
	for _, p := range parts {
		if p.LowStock() {
			resp.LowStockParts++
		}
	}

	var byType score.Tally
	for _, rt := range robot.Types {
		byType.Seed(string(rt))
	}
	deltas := make([]score.Delta, 0, len(result.Records)+len(swaps.Records))
	for _, e := range result.Records {
		robotType := robot.TypeUnknown
		if r, ok := types[e.RobotID]; ok {
			robotType = string(r.Type)
		}
		byType.Count(robotType)
		// Controller imports are not scored.
		if e.Source != malfunction.SourceController {
			deltas = append(deltas, score.Delta{Key: e.EmployeeID, Value: score.ExceptionLogged})
		}
	}
	for _, sw := range swaps.Records {
		if sw.Action == part.ActionInstall {
			resp.PartsInstalled += sw.Quantity
			deltas = append(deltas, score.Delta{Key: sw.EmployeeID, Value: score.PartSwap})
		} else {
			resp.PartsRemoved += sw.Quantity
			deltas = append(deltas, score.Delta{Key: sw.EmployeeID, Value: score.PartRemoval})
		}
	}
	resp.ExceptionsByType = byType.Totals()

	resp.ShiftPointsByStaff = score.Accumulate(deltas)
	for id, v := range resp.ShiftPointsByStaff {
		resp.ShiftPointsByStaff[id] = score.Round(v, 2)
	}

	return resp, nil
}

// Scores ranks employees of the caller's warehouse by monthly points.
func (s *StatsServiceImpl) Scores(ctx context.Context, req stats.ScoresRequest) (stats.Scoreboard, error) {
	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return stats.Scoreboard{}, err
	}

	month := req.Month
	if month == "" {
		month = shift.MonthOf(s.clock.Now(), scope.Location)
	}
	if !validator.IsValidYearMonth(month) {
		return stats.Scoreboard{}, validator.ValidationErrors{{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		}}
	}

	scores, err := s.scoreRepo.List(ctx, scope.ID(), month)
	if err != nil {
		return stats.Scoreboard{}, fmt.Errorf("failed to list scores: %w", err)
	}

	ids := make([]string, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.EmployeeID)
	}
	info, err := s.employeeRepo.GetDisplayInfo(ctx, scope.ID(), ids)
	if err != nil {
		return stats.Scoreboard{}, fmt.Errorf("failed to load employees: %w", err)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Points != scores[j].Points {
			return scores[i].Points > scores[j].Points
		}
		return scores[i].EmployeeID < scores[j].EmployeeID
	})

	board := stats.Scoreboard{Month: month, Entries: make([]stats.ScoreEntry, 0, len(scores))}
	for i, sc := range scores {
		rank := i + 1
		// Equal points share a rank.
		if i > 0 && score.Round(sc.Points, 2) == score.Round(scores[i-1].Points, 2) {
			rank = board.Entries[i-1].Rank
		}
		board.Entries = append(board.Entries, stats.ScoreEntry{
			Rank:         rank,
			EmployeeID:   sc.EmployeeID,
			EmployeeCode: info[sc.EmployeeID].EmployeeCode,
			FullName:     info[sc.EmployeeID].FullName,
			Points:       score.Round(sc.Points, 2),
			Events:       sc.Events,
		})
	}
	return board, nil
}
