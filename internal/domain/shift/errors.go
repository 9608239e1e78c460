package shift

import (
	"errors"
	"fmt"
)

// Shift domain errors
var (
	// Clock-in / clock-out errors
	ErrActiveShiftExists  = errors.New("you already have an active shift")
	ErrNoActiveShift      = errors.New("no active shift found")
	ErrOutsideGeofence    = errors.New("you are outside the restaurant area")
	ErrShiftAlreadyClosed = errors.New("this employee has already clocked out")

	// General errors
	ErrShiftNotFound = errors.New("shift not found")
)

// GeofenceError carries the measured distance so the worker can see how far off they are.
type GeofenceError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("%s: you are %.0f m away, allowed radius is %.0f m",
		ErrOutsideGeofence.Error(), e.DistanceMeters, e.RadiusMeters)
}

func (e *GeofenceError) Unwrap() error {
	return ErrOutsideGeofence
}
