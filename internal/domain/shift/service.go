package shift

import (
	"context"
)

// ShiftService is the worker's self-service clock
type ShiftService interface {
	// ClockIn opens a shift after the server-side geofence check
	ClockIn(ctx context.Context, req ClockInRequest) (ShiftResponse, error)

	// ClockOut closes the caller's open shift
	ClockOut(ctx context.Context) (ShiftResponse, error)

	// GetActiveShift returns nil when the caller has no open shift
	GetActiveShift(ctx context.Context) (*ShiftResponse, error)

	GetShiftHistory(ctx context.Context, limit int) ([]ShiftResponse, error)
}

// AdminShiftService lets admins inspect and correct any worker's shifts.
// Every method re-checks the caller's role against the profile table.
type AdminShiftService interface {
	GetAllShifts(ctx context.Context, filter ShiftFilter) ([]ShiftResponse, error)
	GetActiveShifts(ctx context.Context) ([]ShiftResponse, error)
	ClockOutEmployee(ctx context.Context, req ClockOutEmployeeRequest) (ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	DeleteShift(ctx context.Context, id string) error
}
