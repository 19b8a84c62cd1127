package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/part"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PartHandler interface {
	Swap(w http.ResponseWriter, r *http.Request)
	Restock(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type partHandlerImpl struct {
	partService part.PartService
}

func NewPartHandler(partService part.PartService) PartHandler {
	return &partHandlerImpl{
		partService: partService,
	}
}

// Swap handles POST /parts/swaps
func (h *partHandlerImpl) Swap(w http.ResponseWriter, r *http.Request) {
	var req part.SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Part swap decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.partService.Swap(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Part swap recorded", result)
}

// Restock handles POST /parts/{id}/restock
func (h *partHandlerImpl) Restock(w http.ResponseWriter, r *http.Request) {
	var req part.RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Part restock decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.PartID = chi.URLParam(r, "id")

	result, err := h.partService.Restock(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Part restocked", result)
}

// List handles GET /parts
func (h *partHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	parts, err := h.partService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, parts, &response.Meta{TotalItems: int64(len(parts))})
}
