package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
)

type ShiftHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetActive(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{
		shiftService: shiftService,
	}
}

// ClockIn implements ShiftHandler.
func (h *shiftHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req shift.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode clock-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.shiftService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements ShiftHandler.
func (h *shiftHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	result, err := h.shiftService.ClockOut(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// GetActive implements ShiftHandler. data is null when the worker is not clocked in.
func (h *shiftHandlerImpl) GetActive(w http.ResponseWriter, r *http.Request) {
	result, err := h.shiftService.GetActiveShift(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result == nil {
		response.SuccessWithMessage(w, "No active shift", nil)
		return
	}
	response.Success(w, result)
}

// GetHistory implements ShiftHandler.
func (h *shiftHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 0)

	result, err := h.shiftService.GetShiftHistory(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
