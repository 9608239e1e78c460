package shift

import (
	"math"
	"time"
)

type EntryMethod string

const (
	EntryMethodGPS EntryMethod = "gps"
	EntryMethodQR  EntryMethod = "qr"
)

type Shift struct {
	ID               string
	UserID           string
	ClockIn          time.Time
	ClockOut         *time.Time
	ClockInLatitude  *float64
	ClockInLongitude *float64
	DurationMinutes  *int
	EntryMethod      EntryMethod
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO / manual join with profiles
	EmployeeName *string
	EmployeeRole *string
}

// IsOpen reports whether the shift has not been clocked out yet.
func (s *Shift) IsOpen() bool {
	return s.ClockOut == nil
}

// RoundedMinutes is used when a worker closes their own shift.
func RoundedMinutes(clockIn, clockOut time.Time) int {
	return int(math.Round(float64(clockOut.Sub(clockIn).Milliseconds()) / 60000))
}

// FlooredMinutes is used for admin clock-outs and edits.
func FlooredMinutes(clockIn, clockOut time.Time) int {
	return int(math.Floor(float64(clockOut.Sub(clockIn).Milliseconds()) / 60000))
}
