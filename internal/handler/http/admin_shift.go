package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AdminShiftHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ListActive(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type adminShiftHandlerImpl struct {
	adminShiftService shift.AdminShiftService
}

func NewAdminShiftHandler(adminShiftService shift.AdminShiftService) AdminShiftHandler {
	return &adminShiftHandlerImpl{
		adminShiftService: adminShiftService,
	}
}

// List implements AdminShiftHandler.
func (h *adminShiftHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter shift.ShiftFilter
	query := r.URL.Query()

	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	result, err := h.adminShiftService.GetAllShifts(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListActive implements AdminShiftHandler.
func (h *adminShiftHandlerImpl) ListActive(w http.ResponseWriter, r *http.Request) {
	result, err := h.adminShiftService.GetActiveShifts(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ClockOut implements AdminShiftHandler. The body is optional.
func (h *adminShiftHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req shift.ClockOutEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ShiftID = chi.URLParam(r, "id")

	result, err := h.adminShiftService.ClockOutEmployee(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee clocked out", result)
}

// Update implements AdminShiftHandler.
func (h *adminShiftHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req shift.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.adminShiftService.UpdateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift updated", result)
}

// Delete implements AdminShiftHandler.
func (h *adminShiftHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.adminShiftService.DeleteShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift deleted", nil)
}
