package http

import (
	"net/http"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Exceptions of one shift with robot type totals
	GetShiftReport(w http.ResponseWriter, r *http.Request)

	// Month report with per shift and per day summaries
	GetMonthlyReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetShiftReport handles GET /reports/shift?date=&shift=
func (h *reportHandlerImpl) GetShiftReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := report.ShiftReportRequest{
		Date:  r.URL.Query().Get("date"),
		Shift: r.URL.Query().Get("shift"),
	}

	result, err := h.reportService.ShiftReport(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthlyReport handles GET /reports/monthly?month=YYYY-MM
func (h *reportHandlerImpl) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := report.MonthlyReportRequest{
		Month: r.URL.Query().Get("month"),
	}

	result, err := h.reportService.MonthlyReport(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
