package part

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/part"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/scoreboard"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/score"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/sse"
)

type PartServiceImpl struct {
	part.PartRepository
	robotRepo robot.RobotRepository
	scoreRepo scoreboard.ScoreRepository
	tx        database.Transactor
	locator   warehouse.ScopeLocator
	resolver  *shift.Resolver
	clock     clock.Clock
	events    sse.Publisher
}

func NewPartService(
	partRepo part.PartRepository,
	robotRepo robot.RobotRepository,
	scoreRepo scoreboard.ScoreRepository,
	tx database.Transactor,
	locator warehouse.ScopeLocator,
	resolver *shift.Resolver,
	clk clock.Clock,
	events sse.Publisher,
) part.PartService {
	return &PartServiceImpl{
		PartRepository: partRepo,
		robotRepo:      robotRepo,
		scoreRepo:      scoreRepo,
		tx:             tx,
		locator:        locator,
		resolver:       resolver,
		clock:          clk,
		events:         events,
	}
}

// swapPoints is the score change for one swap event.
func swapPoints(action part.SwapAction) float64 {
	if action == part.ActionInstall {
		return score.PartSwap
	}
	return score.PartRemoval
}

func (s *PartServiceImpl) Swap(ctx context.Context, req part.SwapRequest) (part.SwapResponse, error) {
	if err := req.Validate(); err != nil {
		return part.SwapResponse{}, err
	}

	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return part.SwapResponse{}, err
	}
	if scope.EmployeeID == "" {
		return part.SwapResponse{}, auth.ErrEmployeeRequired
	}

	if _, err := s.robotRepo.GetByID(ctx, req.RobotID, scope.ID()); err != nil {
		return part.SwapResponse{}, fmt.Errorf("failed to get robot: %w", err)
	}

	action := part.SwapAction(req.Action)
	points := swapPoints(action)
	now := s.clock.Now()

	var (
		updated part.Part
		swap    part.Swap
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.AdjustStock(txCtx, req.PartID, scope.ID(), action.StockDelta(req.Quantity))
		if err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

		swap, err = s.CreateSwap(txCtx, part.Swap{
			WarehouseID: scope.ID(),
			PartID:      req.PartID,
			RobotID:     req.RobotID,
			EmployeeID:  scope.EmployeeID,
			Action:      action,
			Quantity:    req.Quantity,
			SwappedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("failed to record swap: %w", err)
		}

		incs := scoreboard.IncrementsFrom([]score.Delta{{Key: scope.EmployeeID, Value: points}})
		if _, err := s.scoreRepo.ApplyIncrements(txCtx, scope.ID(), shift.MonthOf(now, scope.Location), incs); err != nil {
			return fmt.Errorf("failed to update score: %w", err)
		}
		return nil
	})
	if err != nil {
		return part.SwapResponse{}, err
	}

	if updated.LowStock() {
		slog.Warn("part stock low", "warehouse_id", scope.ID(), "part_id", updated.ID, "stock", updated.Stock, "min_stock", updated.MinStock)
	}

	label := s.resolver.ClassifyIn(now, scope.Location).Window.Label()
	resp := part.ToSwapResponse(swap, updated, label, points)
	s.events.Publish(scope.ID(), sse.Event{Event: sse.EventPartSwapped, Shift: label, At: now, Data: resp})

	return resp, nil
}

func (s *PartServiceImpl) Restock(ctx context.Context, req part.RestockRequest) (part.PartResponse, error) {
	if err := req.Validate(); err != nil {
		return part.PartResponse{}, err
	}

	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return part.PartResponse{}, err
	}

	updated, err := s.AdjustStock(ctx, req.PartID, scope.ID(), req.Quantity)
	if err != nil {
		return part.PartResponse{}, fmt.Errorf("failed to restock part: %w", err)
	}

	resp := part.ToResponse(updated)
	s.events.Publish(scope.ID(), sse.Event{Event: sse.EventPartRestocked, At: s.clock.Now(), Data: resp})
	return resp, nil
}

func (s *PartServiceImpl) List(ctx context.Context) ([]part.PartResponse, error) {
	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	parts, err := s.PartRepository.List(ctx, scope.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}

	resp := make([]part.PartResponse, 0, len(parts))
	for _, p := range parts {
		resp = append(resp, part.ToResponse(p))
	}
	return resp, nil
}
