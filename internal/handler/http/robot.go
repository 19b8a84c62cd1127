package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type RobotHandler interface {
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type robotHandlerImpl struct {
	robotService robot.RobotService
}

func NewRobotHandler(robotService robot.RobotService) RobotHandler {
	return &robotHandlerImpl{
		robotService: robotService,
	}
}

// ChangeStatus handles POST /robots/{id}/status
func (h *robotHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req robot.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Change robot status decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RobotID = chi.URLParam(r, "id")

	result, err := h.robotService.ChangeStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Robot status changed", result)
}

// List handles GET /robots?type=&status=
func (h *robotHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter robot.ListRobotsFilter
	if v := r.URL.Query().Get("type"); v != "" {
		filter.Type = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	robots, err := h.robotService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, robots, &response.Meta{TotalItems: int64(len(robots))})
}
