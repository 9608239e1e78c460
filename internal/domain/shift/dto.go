package shift

import (
	"math"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// ========================================
// CLOCK DTOs
// ========================================

// ClockInRequest carries the worker's reported position. Both fields are
// pointers so a missing coordinate is told apart from 0.
type ClockInRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	switch {
	case r.Latitude == nil:
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	case math.IsNaN(*r.Latitude) || math.IsInf(*r.Latitude, 0) || *r.Latitude < -90 || *r.Latitude > 90:
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	switch {
	case r.Longitude == nil:
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	case math.IsNaN(*r.Longitude) || math.IsInf(*r.Longitude, 0) || *r.Longitude < -180 || *r.Longitude > 180:
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ShiftResponse struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	EmployeeName     *string  `json:"employee_name,omitempty"`
	EmployeeRole     *string  `json:"employee_role,omitempty"`
	ClockIn          string   `json:"clock_in"`
	ClockOut         *string  `json:"clock_out"`
	ClockInLatitude  *float64 `json:"clock_in_latitude,omitempty"`
	ClockInLongitude *float64 `json:"clock_in_longitude,omitempty"`
	DurationMinutes  *int     `json:"duration_minutes"`
	EntryMethod      string   `json:"entry_method"`
	IsActive         bool     `json:"is_active"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

// NewShiftResponse converts a Shift entity to ShiftResponse
func NewShiftResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:               s.ID,
		UserID:           s.UserID,
		EmployeeName:     s.EmployeeName,
		EmployeeRole:     s.EmployeeRole,
		ClockIn:          s.ClockIn.UTC().Format(time.RFC3339),
		ClockOut:         timePtrToString(s.ClockOut),
		ClockInLatitude:  s.ClockInLatitude,
		ClockInLongitude: s.ClockInLongitude,
		DurationMinutes:  s.DurationMinutes,
		EntryMethod:      string(s.EntryMethod),
		IsActive:         s.IsOpen(),
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ========================================
// ADMIN DTOs
// ========================================

type ShiftFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD, inclusive
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD, inclusive
}

func (f *ShiftFilter) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var hasStart, hasEnd bool

	if f.StartDate != nil && *f.StartDate != "" {
		if start, hasStart = validator.IsValidDate(*f.StartDate); !hasStart {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if end, hasEnd = validator.IsValidDate(*f.EndDate); !hasEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if hasStart && hasEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Range converts the filter dates to a clock-in range in loc. Call Validate first.
func (f *ShiftFilter) Range(loc *time.Location) ShiftRange {
	var r ShiftRange
	if f.StartDate != nil && *f.StartDate != "" {
		if d, err := time.ParseInLocation("2006-01-02", *f.StartDate, loc); err == nil {
			r.From = &d
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if d, err := time.ParseInLocation("2006-01-02", *f.EndDate, loc); err == nil {
			next := d.AddDate(0, 0, 1)
			r.To = &next
		}
	}
	return r
}

// ClockOutEmployeeRequest lets an admin close a worker's shift, optionally backdated
type ClockOutEmployeeRequest struct {
	ShiftID      string  `json:"-"`
	ClockOutTime *string `json:"clock_out_time,omitempty"` // RFC3339, defaults to now
}

func (r *ClockOutEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ShiftID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "shift id is required",
		})
	} else if !validator.IsValidUUID(r.ShiftID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "shift id must be a valid UUID",
		})
	}

	if r.ClockOutTime != nil && *r.ClockOutTime != "" {
		if _, valid := validator.IsValidDateTime(*r.ClockOutTime); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_out_time",
				Message: "clock_out_time must be an ISO8601 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateShiftRequest for admin to fix wrong clock times
type UpdateShiftRequest struct {
	ID       string  `json:"-"`
	ClockIn  string  `json:"clock_in"`            // RFC3339
	ClockOut *string `json:"clock_out,omitempty"` // RFC3339, null re-opens the shift
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "shift id is required",
		})
	} else if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "shift id must be a valid UUID",
		})
	}

	clockIn, clockInValid := validator.IsValidDateTime(r.ClockIn)
	if !clockInValid {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_in",
			Message: "clock_in is required and must be an ISO8601 timestamp",
		})
	}

	if r.ClockOut != nil && *r.ClockOut != "" {
		clockOut, valid := validator.IsValidDateTime(*r.ClockOut)
		if !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_out",
				Message: "clock_out must be an ISO8601 timestamp",
			})
		} else if clockInValid && clockOut.Before(clockIn) {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_out",
				Message: "clock_out must not be before clock_in",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
