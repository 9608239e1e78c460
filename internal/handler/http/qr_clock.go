package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/qrclock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
)

type QRClockHandler interface {
	Clock(w http.ResponseWriter, r *http.Request)
}

type qrClockHandlerImpl struct {
	qrClockService qrclock.QRClockService
}

func NewQRClockHandler(qrClockService qrclock.QRClockService) QRClockHandler {
	return &qrClockHandlerImpl{
		qrClockService: qrClockService,
	}
}

// Clock implements QRClockHandler. It answers with the scanner app's own
// {success, action, message, shift} / {success:false, error} envelope.
func (h *qrClockHandlerImpl) Clock(w http.ResponseWriter, r *http.Request) {
	var req qrclock.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, qrclock.NewFailureResponse(qrclock.ErrInvalidBody))
		return
	}

	result, err := h.qrClockService.Clock(r.Context(), req)
	if err != nil {
		status := qrClockStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("QR clock failed", "user_id", req.UserID, "error", err)
		}
		response.JSON(w, status, qrclock.NewFailureResponse(err))
		return
	}

	response.JSON(w, http.StatusOK, result)
}

func qrClockStatus(err error) int {
	switch {
	case errors.Is(err, qrclock.ErrInvalidBody),
		errors.Is(err, qrclock.ErrMissingFields),
		errors.Is(err, location.ErrMalformedQRData),
		errors.Is(err, location.ErrInvalidQRType),
		errors.Is(err, qrclock.ErrInvalidQRCode),
		errors.Is(err, shift.ErrActiveShiftExists):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNotAuthenticated),
		errors.Is(err, qrclock.ErrIdentityMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, profile.ErrProfileBanned):
		return http.StatusForbidden
	case errors.Is(err, qrclock.ErrProfileNotFound),
		errors.Is(err, shift.ErrNoActiveShift):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
