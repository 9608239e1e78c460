package qrclock

import (
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
)

type Action string

const (
	ActionClockIn  Action = "clock_in"
	ActionClockOut Action = "clock_out"
)

// ClockRequest is sent by the worker's phone after scanning the restaurant QR code.
// HasActiveShift only selects the branch; the server re-checks it.
type ClockRequest struct {
	UserID         string `json:"userId"`
	QRData         string `json:"qrData"`
	HasActiveShift bool   `json:"hasActiveShift"`
}

func (r *ClockRequest) Validate() error {
	if r.UserID == "" || r.QRData == "" {
		return ErrMissingFields
	}
	return nil
}

type ClockResponse struct {
	Success bool                 `json:"success"`
	Action  Action               `json:"action,omitempty"`
	Message string               `json:"message,omitempty"`
	Shift   *shift.ShiftResponse `json:"shift,omitempty"`
	Error   string               `json:"error,omitempty"`
}

func NewFailureResponse(err error) ClockResponse {
	return ClockResponse{Success: false, Error: err.Error()}
}
