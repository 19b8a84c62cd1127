package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/sse"
)

const (
	RollupWarmed = "warmed"
	RollupClosed = "closed"
	RollupFailed = "failed"
)

// ShiftClosed is the payload of a shift_closed event.
type ShiftClosed struct {
	Window          shift.Window       `json:"window"`
	TotalExceptions int                `json:"total_exceptions"`
	RobotTypeTotals map[string]float64 `json:"robot_type_totals"`
	Skipped         int                `json:"skipped"`
}

type ShiftJobs struct {
	warehouseRepo warehouse.WarehouseRepository
	reportSvc     report.ReportService
	resolver      *shift.Resolver
	clock         clock.Clock
	events        sse.Publisher
	metrics       *metrics.Metrics

	mu      sync.Mutex
	running map[string]shift.Window
}

func NewShiftJobs(
	warehouseRepo warehouse.WarehouseRepository,
	reportSvc report.ReportService,
	resolver *shift.Resolver,
	clk clock.Clock,
	events sse.Publisher,
	m *metrics.Metrics,
) *ShiftJobs {
	return &ShiftJobs{
		warehouseRepo: warehouseRepo,
		reportSvc:     reportSvc,
		resolver:      resolver,
		clock:         clk,
		events:        events,
		metrics:       m,
		running:       make(map[string]shift.Window),
	}
}

func (j *ShiftJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("shift_rollup", interval, j.RollupClosedShifts)
}

// RollupClosedShifts watches the running shift of every active warehouse.
// When it changes, the shift that just ended is reported and announced.
// The first observation of a warehouse only warms the cache with the
// previous shift.
func (j *ShiftJobs) RollupClosedShifts(ctx context.Context) error {
	warehouses, err := j.warehouseRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list warehouses: %w", err)
	}

	now := j.clock.Now()
	var errs []error
	for _, wh := range warehouses {
		if err := j.rollup(ctx, wh, now); err != nil {
			j.metrics.RecordRollup(RollupFailed)
			errs = append(errs, fmt.Errorf("warehouse %s: %w", wh.Code, err))
		}
	}
	return errors.Join(errs...)
}

func (j *ShiftJobs) rollup(ctx context.Context, wh warehouse.Warehouse, now time.Time) error {
	loc, err := j.resolver.Location(wh.Timezone)
	if err != nil {
		return err
	}
	current := j.resolver.ClassifyIn(now, loc).Window

	j.mu.Lock()
	last, seen := j.running[wh.ID]
	j.running[wh.ID] = current
	j.mu.Unlock()

	if !seen {
		previous := j.resolver.Previous(current, loc)
		if _, err := j.reportSvc.BuildShiftReport(ctx, wh.ID, previous); err != nil {
			return fmt.Errorf("failed to build report for %s: %w", previous.Label(), err)
		}
		j.metrics.RecordRollup(RollupWarmed)
		return nil
	}
	if last.Start.Equal(current.Start) {
		return nil
	}

	rep, err := j.reportSvc.BuildShiftReport(ctx, wh.ID, last)
	if err != nil {
		return fmt.Errorf("failed to build report for %s: %w", last.Label(), err)
	}

	slog.Info("Cron: shift closed",
		"warehouse", wh.Code, "shift", last.Label(), "exceptions", rep.TotalExceptions, "skipped", len(rep.Skipped))
	j.events.Publish(wh.ID, sse.Event{
		Event: sse.EventShiftClosed,
		Shift: last.Label(),
		At:    now,
		Data: ShiftClosed{
			Window:          last,
			TotalExceptions: rep.TotalExceptions,
			RobotTypeTotals: rep.RobotTypeTotals,
			Skipped:         len(rep.Skipped),
		},
	})
	j.metrics.RecordRollup(RollupClosed)
	return nil
}
