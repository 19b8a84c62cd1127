package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/sse"
)

type RobotServiceImpl struct {
	robot.RobotRepository
	tx       database.Transactor
	locator  warehouse.ScopeLocator
	resolver *shift.Resolver
	clock    clock.Clock
	events   sse.Publisher
}

func NewRobotService(
	robotRepo robot.RobotRepository,
	tx database.Transactor,
	locator warehouse.ScopeLocator,
	resolver *shift.Resolver,
	clk clock.Clock,
	events sse.Publisher,
) robot.RobotService {
	return &RobotServiceImpl{
		RobotRepository: robotRepo,
		tx:              tx,
		locator:         locator,
		resolver:        resolver,
		clock:           clk,
		events:          events,
	}
}

func (s *RobotServiceImpl) ChangeStatus(ctx context.Context, req robot.ChangeStatusRequest) (robot.StatusChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return robot.StatusChangeResponse{}, err
	}

	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return robot.StatusChangeResponse{}, err
	}
	if scope.EmployeeID == "" {
		return robot.StatusChangeResponse{}, auth.ErrEmployeeRequired
	}

	next := robot.Status(req.Status)
	now := s.clock.Now()

	var change robot.StatusChange
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.GetByID(txCtx, req.RobotID, scope.ID())
		if err != nil {
			return fmt.Errorf("failed to get robot: %w", err)
		}
		if current.Status == robot.StatusRetired {
			return robot.ErrRobotRetired
		}
		if current.Status == next {
			return robot.ErrStatusUnchanged
		}

		if _, err := s.UpdateStatus(txCtx, current.ID, scope.ID(), next); err != nil {
			return fmt.Errorf("failed to update robot status: %w", err)
		}

		change, err = s.CreateStatusChange(txCtx, robot.StatusChange{
			RobotID:     current.ID,
			WarehouseID: scope.ID(),
			EmployeeID:  scope.EmployeeID,
			FromStatus:  current.Status,
			ToStatus:    next,
			Note:        req.Note,
			ChangedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}
		return nil
	})
	if err != nil {
		return robot.StatusChangeResponse{}, err
	}

	label := s.resolver.ClassifyIn(change.ChangedAt, scope.Location).Window.Label()
	resp := robot.StatusChangeResponse{
		ID:         change.ID,
		RobotID:    change.RobotID,
		EmployeeID: change.EmployeeID,
		FromStatus: change.FromStatus,
		ToStatus:   change.ToStatus,
		Note:       change.Note,
		ChangedAt:  change.ChangedAt.UTC().Format(time.RFC3339),
		Shift:      label,
	}
	s.events.Publish(scope.ID(), sse.Event{Event: sse.EventRobotStatus, Shift: label, At: now, Data: resp})

	return resp, nil
}

func (s *RobotServiceImpl) List(ctx context.Context, filter robot.ListRobotsFilter) ([]robot.RobotResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	robots, err := s.RobotRepository.List(ctx, scope.ID(), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list robots: %w", err)
	}

	resp := make([]robot.RobotResponse, 0, len(robots))
	for _, r := range robots {
		resp = append(resp, robot.ToResponse(r))
	}
	return resp, nil
}
