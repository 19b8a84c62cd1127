package report

import (
	"context"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

type ReportService interface {
	// ShiftReport builds the report of one shift, the current one when the
	// request is empty.
	ShiftReport(ctx context.Context, req ShiftReportRequest) (ShiftReport, error)

	// MonthlyReport builds a month report. Closed months are served from cache.
	MonthlyReport(ctx context.Context, req MonthlyReportRequest) (MonthlyReport, error)

	// BuildShiftReport is ShiftReport for a known warehouse and window,
	// used by background jobs.
	BuildShiftReport(ctx context.Context, warehouseID string, window shift.Window) (ShiftReport, error)
}
