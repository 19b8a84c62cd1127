package http

import (
	"net/http"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/stats"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http/response"
)

type StatsHandler interface {
	CurrentShift(w http.ResponseWriter, r *http.Request)
	Scores(w http.ResponseWriter, r *http.Request)
}

type statsHandlerImpl struct {
	statsService stats.StatsService
}

func NewStatsHandler(statsService stats.StatsService) StatsHandler {
	return &statsHandlerImpl{
		statsService: statsService,
	}
}

// CurrentShift handles GET /stats/current-shift
func (h *statsHandlerImpl) CurrentShift(w http.ResponseWriter, r *http.Request) {
	result, err := h.statsService.CurrentShift(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Scores handles GET /stats/scores?month=YYYY-MM
func (h *statsHandlerImpl) Scores(w http.ResponseWriter, r *http.Request) {
	req := stats.ScoresRequest{
		Month: r.URL.Query().Get("month"),
	}

	result, err := h.statsService.Scores(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
