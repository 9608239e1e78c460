package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
)

// ShiftRepository keeps shifts in process. A single mutex serialises every
// write, so the open-shift check and the insert are atomic like the
// postgres unique index.
type ShiftRepository struct {
	mu     sync.Mutex
	shifts map[string]shift.Shift
	now    func() time.Time
}

func NewShiftRepository() *ShiftRepository {
	return &ShiftRepository{
		shifts: make(map[string]shift.Shift),
		now:    time.Now,
	}
}

func (r *ShiftRepository) openFor(userID string, exceptID string) bool {
	for _, s := range r.shifts {
		if s.UserID == userID && s.ClockOut == nil && s.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *ShiftRepository) Create(ctx context.Context, newShift shift.Shift) (shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if newShift.ClockOut == nil && r.openFor(newShift.UserID, "") {
		return shift.Shift{}, shift.ErrActiveShiftExists
	}

	now := r.now()
	newShift.CreatedAt = now
	newShift.UpdatedAt = now
	r.shifts[newShift.ID] = newShift
	return newShift, nil
}

func (r *ShiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

func (r *ShiftRepository) GetOpenByUserID(ctx context.Context, userID string) (*shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *shift.Shift
	for _, s := range r.shifts {
		if s.UserID != userID || s.ClockOut != nil {
			continue
		}
		if latest == nil || s.ClockIn.After(latest.ClockIn) {
			found := s
			latest = &found
		}
	}
	return latest, nil
}

func (r *ShiftRepository) Close(ctx context.Context, id string, clockOut time.Time, durationMinutes int) (shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	if s.ClockOut != nil {
		return shift.Shift{}, shift.ErrShiftAlreadyClosed
	}

	s.ClockOut = &clockOut
	s.DurationMinutes = &durationMinutes
	s.UpdatedAt = r.now()
	r.shifts[id] = s
	return s, nil
}

func (r *ShiftRepository) UpdateTimes(ctx context.Context, id string, clockIn time.Time, clockOut *time.Time, durationMinutes *int) (shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	if clockOut == nil && r.openFor(s.UserID, id) {
		return shift.Shift{}, shift.ErrActiveShiftExists
	}

	s.ClockIn = clockIn
	s.ClockOut = clockOut
	s.DurationMinutes = durationMinutes
	s.UpdatedAt = r.now()
	r.shifts[id] = s
	return s, nil
}

func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shifts[id]; !ok {
		return shift.ErrShiftNotFound
	}
	delete(r.shifts, id)
	return nil
}

func (r *ShiftRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]shift.Shift, error) {
	out := r.filter(func(s shift.Shift) bool { return s.UserID == userID })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ShiftRepository) List(ctx context.Context, rng shift.ShiftRange) ([]shift.Shift, error) {
	return r.filter(func(s shift.Shift) bool {
		if rng.From != nil && s.ClockIn.Before(*rng.From) {
			return false
		}
		if rng.To != nil && !s.ClockIn.Before(*rng.To) {
			return false
		}
		return true
	}), nil
}

func (r *ShiftRepository) ListOpen(ctx context.Context) ([]shift.Shift, error) {
	return r.filter(func(s shift.Shift) bool { return s.ClockOut == nil }), nil
}

// filter returns matching shifts, newest clock-in first
func (r *ShiftRepository) filter(keep func(shift.Shift) bool) []shift.Shift {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]shift.Shift, 0)
	for _, s := range r.shifts {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClockIn.Equal(out[j].ClockIn) {
			return out[i].ID > out[j].ID
		}
		return out[i].ClockIn.After(out[j].ClockIn)
	})
	return out
}
