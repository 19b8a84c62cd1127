package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/malfunction"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/bucket"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/validator"
)

type ReportServiceImpl struct {
	malfunction.ExceptionRepository
	robotRepo    robot.RobotRepository
	employeeRepo employee.EmployeeRepository
	locator      warehouse.ScopeLocator
	resolver     *shift.Resolver
	clock        clock.Clock
	cache        cache.Cache
	metrics      *metrics.Metrics
	pageSize     int
	cacheTTL     time.Duration
}

// NewReportService builds the report service. reportCache and m may be nil.
func NewReportService(
	exceptionRepo malfunction.ExceptionRepository,
	robotRepo robot.RobotRepository,
	employeeRepo employee.EmployeeRepository,
	locator warehouse.ScopeLocator,
	resolver *shift.Resolver,
	clk clock.Clock,
	reportCache cache.Cache,
	m *metrics.Metrics,
	pageSize int,
	cacheTTL time.Duration,
) report.ReportService {
	return &ReportServiceImpl{
		ExceptionRepository: exceptionRepo,
		robotRepo:           robotRepo,
		employeeRepo:        employeeRepo,
		locator:             locator,
		resolver:            resolver,
		clock:               clk,
		cache:               reportCache,
		metrics:             m,
		pageSize:            pageSize,
		cacheTTL:            cacheTTL,
	}
}

func (s *ReportServiceImpl) ShiftReport(ctx context.Context, req report.ShiftReportRequest) (report.ShiftReport, error) {
	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return report.ShiftReport{}, err
	}

	window, err := s.resolver.Query(req.Date, req.Shift, s.clock.Now(), scope.Location)
	if err != nil {
		return report.ShiftReport{}, err
	}

	return s.shiftReport(ctx, scope, window)
}

func (s *ReportServiceImpl) BuildShiftReport(ctx context.Context, warehouseID string, window shift.Window) (report.ShiftReport, error) {
	scope, err := s.locator.ForWarehouse(ctx, warehouseID)
	if err != nil {
		return report.ShiftReport{}, err
	}
	return s.shiftReport(ctx, scope, window)
}

func (s *ReportServiceImpl) shiftReport(ctx context.Context, scope warehouse.Scope, window shift.Window) (report.ShiftReport, error) {
	now := s.clock.Now()
	closed := !now.Before(window.End)
	key := cache.ShiftReportKey(scope.ID(), window.Start)

	if closed {
		var cached report.ShiftReport
		if s.fromCache(ctx, key, &cached) {
			return cached, nil
		}
	}

	agg, err := bucket.New(s.resolver, scope.Timezone(), malfunction.Exception.Stamp)
	if err != nil {
		return report.ShiftReport{}, err
	}
	collector := agg.ShiftCollector(window)

	fetch := bucket.Ranged[malfunction.Exception](s.ListPage, scope.ID(), window.Start, window.End)
	if _, err := bucket.Drain(ctx, fetch, s.pageSize, collector.Sink); err != nil {
		return report.ShiftReport{}, fmt.Errorf("failed to load exceptions: %w", err)
	}
	result := collector.Result()

	lk, err := s.loadLookup(ctx, scope.ID(), result.Records)
	if err != nil {
		return report.ShiftReport{}, err
	}

	buckets := []bucket.Bucket[malfunction.Exception]{{Window: window, Records: result.Records}}
	resp := report.ShiftReport{
		WarehouseID:     scope.ID(),
		Timezone:        scope.Timezone(),
		Window:          window,
		Rows:            bucket.AssembleRows(buckets, lk.row),
		RobotTypeTotals: lk.totals(result.Records),
		TotalExceptions: len(result.Records),
		Skipped:         s.skippedRows(scope, window.Label(), result.Skipped),
		AmbiguousCount:  len(result.Ambiguous),
		GeneratedAt:     now,
	}

	if closed {
		s.toCache(ctx, key, resp)
	}
	return resp, nil
}

func (s *ReportServiceImpl) MonthlyReport(ctx context.Context, req report.MonthlyReportRequest) (report.MonthlyReport, error) {
	scope, err := s.locator.FromContext(ctx)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	now := s.clock.Now()
	month := req.Month
	if month == "" {
		month = shift.MonthOf(now, scope.Location)
	}
	if !validator.IsValidYearMonth(month) {
		return report.MonthlyReport{}, validator.ValidationErrors{{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		}}
	}

	start, end, err := shift.MonthRange(month, scope.Location)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	closed := !now.Before(end)
	key := cache.MonthlyReportKey(scope.ID(), month)
	if closed {
		var cached report.MonthlyReport
		if s.fromCache(ctx, key, &cached) {
			cached.Cached = true
			return cached, nil
		}
	}

	agg, err := bucket.New(s.resolver, scope.Timezone(), malfunction.Exception.Stamp)
	if err != nil {
		return report.MonthlyReport{}, err
	}
	collector, err := agg.MonthCollector(month)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	fetch := bucket.Ranged[malfunction.Exception](s.ListPage, scope.ID(), start, end)
	if _, err := bucket.Drain(ctx, fetch, s.pageSize, collector.Sink); err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to load exceptions: %w", err)
	}
	result := collector.Result()
	groups := agg.GroupByShift(result.Records)

	lk, err := s.loadLookup(ctx, scope.ID(), result.Records)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	resp := report.MonthlyReport{
		WarehouseID:     scope.ID(),
		Timezone:        scope.Timezone(),
		Month:           month,
		Start:           start,
		End:             end,
		Rows:            bucket.AssembleRows(groups.Buckets, lk.row),
		Days:            summarizeDays(groups.Buckets),
		Shifts:          make([]report.ShiftSummary, 0, len(groups.Buckets)),
		RobotTypeTotals: lk.totals(result.Records),
		TotalExceptions: len(result.Records),
		Skipped:         s.skippedRows(scope, month, result.Skipped),
		AmbiguousCount:  len(result.Ambiguous),
		GeneratedAt:     now,
	}
	for _, b := range groups.Buckets {
		resp.Shifts = append(resp.Shifts, report.ShiftSummary{
			Label:           b.Window.Label(),
			Kind:            b.Window.Kind,
			Start:           b.Window.Start,
			End:             b.Window.End,
			Exceptions:      len(b.Records),
			RobotTypeTotals: lk.totals(b.Records),
		})
	}

	if closed {
		s.toCache(ctx, key, resp)
	}
	return resp, nil
}

// summarizeDays folds shift buckets into per-date counts. Buckets are
// ordered by start, so dates come out ascending.
func summarizeDays(buckets []bucket.Bucket[malfunction.Exception]) []report.DaySummary {
	days := make([]report.DaySummary, 0, len(buckets))
	index := make(map[shift.CivilDate]int)
	for _, b := range buckets {
		i, ok := index[b.Window.LocalDate]
		if !ok {
			i = len(days)
			index[b.Window.LocalDate] = i
			days = append(days, report.DaySummary{Date: b.Window.LocalDate})
		}
		if b.Window.Kind == shift.Day {
			days[i].DayShift += len(b.Records)
		} else {
			days[i].NightShift += len(b.Records)
		}
		days[i].Total += len(b.Records)
	}
	return days
}

func (s *ReportServiceImpl) skippedRows(scope warehouse.Scope, period string, skipped []bucket.Skipped[malfunction.Exception]) []report.SkippedRow {
	rows := make([]report.SkippedRow, 0, len(skipped))
	counts := make(map[bucket.Reason]int)
	for _, sk := range skipped {
		rows = append(rows, report.SkippedRow{ExceptionID: sk.Record.ID, Raw: sk.Raw, Reason: string(sk.Reason)})
		counts[sk.Reason]++
	}
	for reason, n := range counts {
		s.metrics.RecordSkipped(string(reason), n)
	}
	if len(rows) > 0 {
		slog.Warn("exceptions skipped in report", "warehouse_id", scope.ID(), "period", period, "count", len(rows))
	}
	return rows
}

func (s *ReportServiceImpl) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	found, err := cache.GetJSON(ctx, s.cache, key, dst)
	if err != nil {
		slog.Warn("report cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *ReportServiceImpl) toCache(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, v, s.cacheTTL); err != nil {
		slog.Warn("report cache write failed", "key", key, "error", err)
	}
}
