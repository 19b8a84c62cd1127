package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/malfunction"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ExceptionHandler interface {
	Log(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type exceptionHandlerImpl struct {
	exceptionService malfunction.ExceptionService
}

func NewExceptionHandler(exceptionService malfunction.ExceptionService) ExceptionHandler {
	return &exceptionHandlerImpl{
		exceptionService: exceptionService,
	}
}

// Log handles POST /exceptions
func (h *exceptionHandlerImpl) Log(w http.ResponseWriter, r *http.Request) {
	var req malfunction.LogExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Log exception decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.exceptionService.LogException(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Exception logged", result)
}

// Import handles POST /exceptions/import
func (h *exceptionHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	var req malfunction.ImportExceptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Import exceptions decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.exceptionService.ImportExceptions(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Exceptions imported", result)
}

// Get handles GET /exceptions/{id}
func (h *exceptionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Exception ID is required", nil)
		return
	}

	result, err := h.exceptionService.GetException(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateStatus handles PATCH /exceptions/{id}/status
func (h *exceptionHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req malfunction.UpdateRepairStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update repair status decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.exceptionService.UpdateRepairStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Repair status updated", result)
}

// List handles GET /exceptions?date=&shift=
func (h *exceptionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := malfunction.ListExceptionsRequest{
		Date:  r.URL.Query().Get("date"),
		Shift: r.URL.Query().Get("shift"),
	}

	result, err := h.exceptionService.ListByShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
