package malfunction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/malfunction"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/scoreboard"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/bucket"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/score"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type ExceptionServiceImpl struct {
	malfunction.ExceptionRepository
	robotRepo robot.RobotRepository
	scoreRepo scoreboard.ScoreRepository
	tx        database.Transactor
	locator   warehouse.ScopeLocator
	resolver  *shift.Resolver
	clock     clock.Clock
	events    sse.Publisher
	cache     cache.Cache
	pageSize  int
}

func NewExceptionService(
	exceptionRepo malfunction.ExceptionRepository,
	robotRepo robot.RobotRepository,
	scoreRepo scoreboard.ScoreRepository,
	tx database.Transactor,
	locator warehouse.ScopeLocator,
	resolver *shift.Resolver,
	clk clock.Clock,
	events sse.Publisher,
	reportCache cache.Cache,
	pageSize int,
) malfunction.ExceptionService {
	return &ExceptionServiceImpl{
		ExceptionRepository: exceptionRepo,
		robotRepo:           robotRepo,
		scoreRepo:           scoreRepo,
		tx:                  tx,
		locator:             locator,
		resolver:            resolver,
		clock:               clk,
		events:              events,
		cache:               reportCache,
		pageSize:            pageSize,
	}
}

// LogException implements malfunction.ExceptionService.
func (s *ExceptionServiceImpl) LogException(ctx context.Context, req malfunction.LogExceptionRequest) (malfunction.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return malfunction.ExceptionResponse{}, err
	}

	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return malfunction.ExceptionResponse{}, err
	}
	if scope.EmployeeID == "" {
		return malfunction.ExceptionResponse{}, auth.ErrEmployeeRequired
	}

	startAt, rule, err := bucket.ParseStamp(bucket.Text(req.ErrorStartTime), scope.Location)
	if err != nil {
		return malfunction.ExceptionResponse{}, validator.ValidationErrors{{
			Field:   "error_start_time",
			Message: fmt.Sprintf("error_start_time is not a valid time in %s", scope.Timezone()),
		}}
	}
	if rule == shift.RuleOverlapEarlier {
		slog.Warn("ambiguous local start time, using earlier instant",
			"warehouse_id", scope.ID(), "error_start_time", req.ErrorStartTime, "resolved", startAt)
	}

	if _, err := s.robotRepo.GetByID(ctx, req.RobotID, scope.ID()); err != nil {
		return malfunction.ExceptionResponse{}, fmt.Errorf("failed to get robot: %w", err)
	}

	now := s.clock.Now()
	var created malfunction.Exception
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.Create(txCtx, malfunction.Exception{
			WarehouseID:    scope.ID(),
			RobotID:        req.RobotID,
			EmployeeID:     scope.EmployeeID,
			ErrorCode:      req.ErrorCode,
			Description:    req.Description,
			ErrorStartTime: req.ErrorStartTime,
			ErrorStartAt:   &startAt,
			StartRule:      rule,
			RepairStatus:   malfunction.RepairOpen,
			Source:         malfunction.SourceManual,
		})
		if err != nil {
			return fmt.Errorf("failed to create exception: %w", err)
		}

		incs := scoreboard.IncrementsFrom([]score.Delta{{Key: scope.EmployeeID, Value: score.ExceptionLogged}})
		if _, err := s.scoreRepo.ApplyIncrements(txCtx, scope.ID(), shift.MonthOf(now, scope.Location), incs); err != nil {
			return fmt.Errorf("failed to update score: %w", err)
		}
		return nil
	})
	if err != nil {
		return malfunction.ExceptionResponse{}, err
	}

	s.invalidateReports(ctx, scope, startAt)

	label := s.resolver.ClassifyIn(startAt, scope.Location).Window.Label()
	resp := malfunction.ToResponse(created, &label)
	s.events.Publish(scope.ID(), sse.Event{Event: sse.EventExceptionLogged, Shift: label, At: now, Data: resp})

	return resp, nil
}

// ImportExceptions stores a controller log batch. Entries whose start time
// cannot be resolved are stored unresolved and reported back; reports skip
// them with INVALID_TIMESTAMP.
func (s *ExceptionServiceImpl) ImportExceptions(ctx context.Context, req malfunction.ImportExceptionsRequest) (malfunction.ImportResponse, error) {
	if err := req.Validate(); err != nil {
		return malfunction.ImportResponse{}, err
	}

	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return malfunction.ImportResponse{}, err
	}
	if scope.EmployeeID == "" {
		return malfunction.ImportResponse{}, auth.ErrEmployeeRequired
	}

	robotIDs := make([]string, 0, len(req.Entries))
	for _, e := range req.Entries {
		robotIDs = append(robotIDs, e.RobotID)
	}
	robots, err := s.robotRepo.GetByIDs(ctx, scope.ID(), robotIDs)
	if err != nil {
		return malfunction.ImportResponse{}, fmt.Errorf("failed to get robots: %w", err)
	}

	var errs validator.ValidationErrors
	for i, e := range req.Entries {
		if _, ok := robots[e.RobotID]; !ok {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("entries[%d].robot_id", i),
				Message: "robot not found",
			})
		}
	}
	if len(errs) > 0 {
		return malfunction.ImportResponse{}, errs
	}

	resp := malfunction.ImportResponse{
		Unresolved: []malfunction.SkippedResponse{},
		Ambiguous:  []malfunction.AmbiguousResponse{},
	}
	batch := make([]malfunction.Exception, 0, len(req.Entries))
	touched := []time.Time{s.clock.Now()}
	for _, e := range req.Entries {
		ex := malfunction.Exception{
			ID:             uuid.New().String(),
			WarehouseID:    scope.ID(),
			RobotID:        e.RobotID,
			EmployeeID:     scope.EmployeeID,
			ErrorCode:      e.ErrorCode,
			Description:    e.Description,
			ErrorStartTime: e.ErrorStartTime,
			RepairStatus:   malfunction.RepairOpen,
			Source:         malfunction.SourceController,
		}
		at, rule, err := bucket.ParseStamp(bucket.Text(e.ErrorStartTime), scope.Location)
		switch {
		case err != nil:
			resp.Unresolved = append(resp.Unresolved, malfunction.SkippedResponse{
				ID:     ex.ID,
				Raw:    e.ErrorStartTime,
				Reason: string(bucket.ReasonInvalidTimestamp),
			})
		case rule == shift.RuleOverlapEarlier:
			resp.Ambiguous = append(resp.Ambiguous, malfunction.AmbiguousResponse{
				ID:         ex.ID,
				Raw:        e.ErrorStartTime,
				ResolvedAt: at.UTC().Format(time.RFC3339),
				Code:       shift.CodeAmbiguousLocalTime,
			})
			fallthrough
		default:
			ex.ErrorStartAt = &at
			ex.StartRule = rule
			touched = append(touched, at)
		}
		batch = append(batch, ex)
	}

	n, err := s.CreateMany(ctx, batch)
	if err != nil {
		return malfunction.ImportResponse{}, fmt.Errorf("failed to import exceptions: %w", err)
	}
	resp.Imported = int(n)

	s.invalidateReports(ctx, scope, touched...)

	if len(resp.Unresolved) > 0 {
		slog.Warn("imported exceptions with unresolved start time",
			"warehouse_id", scope.ID(), "count", len(resp.Unresolved))
	}
	if len(resp.Ambiguous) > 0 {
		slog.Warn("imported exceptions with ambiguous local start time, using earlier instant",
			"warehouse_id", scope.ID(), "count", len(resp.Ambiguous))
	}
	s.events.Publish(scope.ID(), sse.Event{Event: sse.EventExceptionsImported, At: s.clock.Now(), Data: resp})

	return resp, nil
}

func (s *ExceptionServiceImpl) GetException(ctx context.Context, id string) (malfunction.ExceptionResponse, error) {
	if !validator.IsValidUUID(id) {
		return malfunction.ExceptionResponse{}, malfunction.ErrExceptionNotFound
	}

	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return malfunction.ExceptionResponse{}, err
	}

	e, err := s.GetByID(ctx, id, scope.ID())
	if err != nil {
		return malfunction.ExceptionResponse{}, fmt.Errorf("failed to get exception: %w", err)
	}
	return malfunction.ToResponse(e, s.shiftLabel(e, scope)), nil
}

func (s *ExceptionServiceImpl) UpdateRepairStatus(ctx context.Context, req malfunction.UpdateRepairStatusRequest) (malfunction.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return malfunction.ExceptionResponse{}, err
	}

	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return malfunction.ExceptionResponse{}, err
	}

	next := malfunction.RepairStatus(req.RepairStatus)
	now := s.clock.Now()

	var updated malfunction.Exception
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.GetByID(txCtx, req.ID, scope.ID())
		if err != nil {
			return fmt.Errorf("failed to get exception: %w", err)
		}
		if !current.RepairStatus.CanTransition(next) {
			return fmt.Errorf("%w: %s to %s", malfunction.ErrInvalidRepairTransition, current.RepairStatus, next)
		}

		var endAt *time.Time
		if next == malfunction.RepairResolved {
			endAt = &now
		}
		updated, err = s.ExceptionRepository.UpdateRepairStatus(txCtx, req.ID, scope.ID(), next, endAt)
		if err != nil {
			return fmt.Errorf("failed to update repair status: %w", err)
		}
		return nil
	})
	if err != nil {
		return malfunction.ExceptionResponse{}, err
	}

	if updated.ErrorStartAt != nil {
		s.invalidateReports(ctx, scope, *updated.ErrorStartAt)
	} else {
		s.invalidateReports(ctx, scope, updated.CreatedAt)
	}

	resp := malfunction.ToResponse(updated, s.shiftLabel(updated, scope))
	s.events.Publish(scope.ID(), sse.Event{Event: sse.EventRepairStatus, At: now, Data: resp})

	return resp, nil
}

// ListByShift drains every page of the shift and filters it half-open.
func (s *ExceptionServiceImpl) ListByShift(ctx context.Context, req malfunction.ListExceptionsRequest) (malfunction.ListExceptionsResponse, error) {
	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return malfunction.ListExceptionsResponse{}, err
	}

	window, err := s.resolver.Query(req.Date, req.Shift, s.clock.Now(), scope.Location)
	if err != nil {
		return malfunction.ListExceptionsResponse{}, err
	}

	agg, err := bucket.New(s.resolver, scope.Timezone(), malfunction.Exception.Stamp)
	if err != nil {
		return malfunction.ListExceptionsResponse{}, err
	}
	collector := agg.ShiftCollector(window)

	fetch := bucket.Ranged[malfunction.Exception](s.ListPage, scope.ID(), window.Start, window.End)
	if _, err := bucket.Drain(ctx, fetch, s.pageSize, collector.Sink); err != nil {
		return malfunction.ListExceptionsResponse{}, fmt.Errorf("failed to list exceptions: %w", err)
	}
	result := collector.Result()

	label := window.Label()
	resp := malfunction.ListExceptionsResponse{
		Window:     window,
		Exceptions: make([]malfunction.ExceptionResponse, 0, len(result.Records)),
		Skipped:    make([]malfunction.SkippedResponse, 0, len(result.Skipped)),
		Ambiguous:  len(result.Ambiguous),
	}
	for _, e := range result.Records {
		resp.Exceptions = append(resp.Exceptions, malfunction.ToResponse(e, &label))
	}
	for _, sk := range result.Skipped {
		resp.Skipped = append(resp.Skipped, malfunction.SkippedResponse{ID: sk.Record.ID, Raw: sk.Raw, Reason: string(sk.Reason)})
	}
	if len(result.Skipped) > 0 {
		slog.Warn("exceptions skipped while listing shift",
			"warehouse_id", scope.ID(), "shift", label, "count", len(result.Skipped))
	}

	return resp, nil
}

func (s *ExceptionServiceImpl) shiftLabel(e malfunction.Exception, scope warehouse.Scope) *string {
	if e.ErrorStartAt == nil {
		return nil
	}
	label := s.resolver.ClassifyIn(*e.ErrorStartAt, scope.Location).Window.Label()
	return &label
}

// invalidateReports drops the cached shift and monthly reports covering
// each instant. Failures are logged; the next read rebuilds from storage.
func (s *ExceptionServiceImpl) invalidateReports(ctx context.Context, scope warehouse.Scope, instants ...time.Time) {
	if s.cache == nil {
		return
	}

	keys := make(map[string]struct{})
	for _, at := range instants {
		window := s.resolver.ClassifyIn(at, scope.Location).Window
		for _, key := range cache.ReportKeys(scope.ID(), window.Start, shift.MonthOf(at, scope.Location)) {
			keys[key] = struct{}{}
		}
	}

	for key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			slog.Warn("report cache invalidation failed", "key", key, "error", err)
		}
	}
}
