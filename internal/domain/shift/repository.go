package shift

import (
	"context"
	"time"
)

// ShiftRange bounds List by clock-in time. Nil bounds are open.
type ShiftRange struct {
	From *time.Time // inclusive
	To   *time.Time // exclusive
}

// ShiftRepository defines data access methods for shifts.
type ShiftRepository interface {
	// Create inserts a new shift. Implementations enforce at most one open shift
	// per user and return ErrActiveShiftExists when that would be violated.
	Create(ctx context.Context, shift Shift) (Shift, error)

	// GetByID returns ErrShiftNotFound when the shift does not exist
	GetByID(ctx context.Context, id string) (Shift, error)

	// GetOpenByUserID returns the user's most recent open shift, or nil when there is none
	GetOpenByUserID(ctx context.Context, userID string) (*Shift, error)

	// Close sets clock_out and duration only if the shift is still open.
	// Returns ErrShiftAlreadyClosed or ErrShiftNotFound otherwise.
	Close(ctx context.Context, id string, clockOut time.Time, durationMinutes int) (Shift, error)

	// UpdateTimes overwrites clock-in/clock-out/duration (admin edit)
	UpdateTimes(ctx context.Context, id string, clockIn time.Time, clockOut *time.Time, durationMinutes *int) (Shift, error)

	// Delete removes a shift, ErrShiftNotFound when nothing was deleted
	Delete(ctx context.Context, id string) error

	// ListByUserID returns the user's shifts, newest clock-in first
	ListByUserID(ctx context.Context, userID string, limit int) ([]Shift, error)

	// List returns all shifts in the range, newest clock-in first
	List(ctx context.Context, r ShiftRange) ([]Shift, error)

	// ListOpen returns every open shift, newest clock-in first
	ListOpen(ctx context.Context) ([]Shift, error)
}

// ChangePublisher makes shift writes observable to realtime subscribers.
type ChangePublisher interface {
	PublishShiftChange(ctx context.Context, event ChangeEvent)
}

type ChangeAction string

const (
	ChangeClockIn  ChangeAction = "clock_in"
	ChangeClockOut ChangeAction = "clock_out"
	ChangeUpdate   ChangeAction = "update"
	ChangeDelete   ChangeAction = "delete"
	ChangeSnapshot ChangeAction = "snapshot"
)

type ChangeEvent struct {
	ShiftID     string       `json:"shift_id,omitempty"`
	UserID      string       `json:"user_id,omitempty"`
	Action      ChangeAction `json:"action"`
	ActiveCount *int         `json:"active_count,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}
