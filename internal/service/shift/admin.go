package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

type AdminShiftServiceImpl struct {
	shiftRepo   shift.ShiftRepository
	profileRepo profile.ProfileRepository
	publisher   shift.ChangePublisher
	loc         *time.Location
	now         func() time.Time
}

// NewAdminShiftService builds the admin service. loc is the restaurant's time
// zone, used to turn filter dates into clock-in ranges.
func NewAdminShiftService(
	shiftRepo shift.ShiftRepository,
	profileRepo profile.ProfileRepository,
	publisher shift.ChangePublisher,
	loc *time.Location,
) shift.AdminShiftService {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminShiftServiceImpl{
		shiftRepo:   shiftRepo,
		profileRepo: profileRepo,
		publisher:   publisher,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *AdminShiftServiceImpl) requireAdmin(ctx context.Context) (profile.Profile, error) {
	callerID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return profile.Profile{}, profile.ErrUnauthorized
	}
	return profile.RequireRole(ctx, s.profileRepo, callerID, profile.RoleAdmin)
}

// GetAllShifts implements shift.AdminShiftService.
func (s *AdminShiftServiceImpl) GetAllShifts(ctx context.Context, filter shift.ShiftFilter) ([]shift.ShiftResponse, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	shifts, err := s.shiftRepo.List(ctx, filter.Range(s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	return s.withEmployees(ctx, shifts)
}

// GetActiveShifts implements shift.AdminShiftService.
func (s *AdminShiftServiceImpl) GetActiveShifts(ctx context.Context) ([]shift.ShiftResponse, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	shifts, err := s.shiftRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active shifts: %w", err)
	}

	return s.withEmployees(ctx, shifts)
}

// ClockOutEmployee implements shift.AdminShiftService.
func (s *AdminShiftServiceImpl) ClockOutEmployee(ctx context.Context, req shift.ClockOutEmployeeRequest) (shift.ShiftResponse, error) {
	admin, err := s.requireAdmin(ctx)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	existing, err := s.shiftRepo.GetByID(ctx, req.ShiftID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	if !existing.IsOpen() {
		return shift.ShiftResponse{}, shift.ErrShiftAlreadyClosed
	}

	clockOut := s.now().UTC()
	if req.ClockOutTime != nil && *req.ClockOutTime != "" {
		clockOut, _ = validator.IsValidDateTime(*req.ClockOutTime)
		clockOut = clockOut.UTC()
	}
	if clockOut.Before(existing.ClockIn) {
		return shift.ShiftResponse{}, validator.ValidationErrors{{
			Field:   "clock_out_time",
			Message: "clock_out_time must not be before the shift's clock_in",
		}}
	}

	closed, err := s.shiftRepo.Close(ctx, existing.ID, clockOut, shift.FlooredMinutes(existing.ClockIn, clockOut))
	if err != nil {
		if errors.Is(err, shift.ErrShiftAlreadyClosed) || errors.Is(err, shift.ErrShiftNotFound) {
			return shift.ShiftResponse{}, err
		}
		return shift.ShiftResponse{}, fmt.Errorf("failed to clock out shift: %w", err)
	}

	slog.Info("Admin clocked out employee", "admin_id", admin.ID, "shift_id", closed.ID, "user_id", closed.UserID)
	publishChange(ctx, s.publisher, s.now, closed, shift.ChangeClockOut)

	return s.withEmployee(ctx, closed)
}

// UpdateShift implements shift.AdminShiftService.
func (s *AdminShiftServiceImpl) UpdateShift(ctx context.Context, req shift.UpdateShiftRequest) (shift.ShiftResponse, error) {
	admin, err := s.requireAdmin(ctx)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	clockIn, _ := validator.IsValidDateTime(req.ClockIn)
	clockIn = clockIn.UTC()

	var clockOut *time.Time
	var duration *int
	if req.ClockOut != nil && *req.ClockOut != "" {
		out, _ := validator.IsValidDateTime(*req.ClockOut)
		out = out.UTC()
		minutes := shift.FlooredMinutes(clockIn, out)
		clockOut, duration = &out, &minutes
	}

	updated, err := s.shiftRepo.UpdateTimes(ctx, req.ID, clockIn, clockOut, duration)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) || errors.Is(err, shift.ErrActiveShiftExists) {
			return shift.ShiftResponse{}, err
		}
		return shift.ShiftResponse{}, fmt.Errorf("failed to update shift: %w", err)
	}

	slog.Info("Admin updated shift", "admin_id", admin.ID, "shift_id", updated.ID, "user_id", updated.UserID)
	publishChange(ctx, s.publisher, s.now, updated, shift.ChangeUpdate)

	return s.withEmployee(ctx, updated)
}

// DeleteShift implements shift.AdminShiftService.
func (s *AdminShiftServiceImpl) DeleteShift(ctx context.Context, id string) error {
	admin, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}

	if !validator.IsValidUUID(id) {
		return validator.ValidationErrors{{Field: "id", Message: "shift id must be a valid UUID"}}
	}

	existing, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.shiftRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}

	slog.Info("Admin deleted shift", "admin_id", admin.ID, "shift_id", id, "user_id", existing.UserID)
	publishChange(ctx, s.publisher, s.now, existing, shift.ChangeDelete)

	return nil
}

// withEmployees decorates shifts with the worker's name and role. Profiles are
// loaded once for the whole page and joined in memory.
func (s *AdminShiftServiceImpl) withEmployees(ctx context.Context, shifts []shift.Shift) ([]shift.ShiftResponse, error) {
	ids := make([]string, 0, len(shifts))
	seen := make(map[string]struct{}, len(shifts))
	for _, sh := range shifts {
		if _, ok := seen[sh.UserID]; ok {
			continue
		}
		seen[sh.UserID] = struct{}{}
		ids = append(ids, sh.UserID)
	}

	profiles, err := s.profileRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee profiles: %w", err)
	}

	byID := make(map[string]profile.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	responses := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		if p, ok := byID[sh.UserID]; ok {
			name, role := p.FullName, string(p.Role)
			sh.EmployeeName, sh.EmployeeRole = &name, &role
		}
		responses = append(responses, shift.NewShiftResponse(sh))
	}
	return responses, nil
}

// withEmployee is used after a committed write, so a failed profile lookup
// only drops the decoration.
func (s *AdminShiftServiceImpl) withEmployee(ctx context.Context, sh shift.Shift) (shift.ShiftResponse, error) {
	responses, err := s.withEmployees(ctx, []shift.Shift{sh})
	if err != nil {
		slog.Warn("Returning shift without employee details", "shift_id", sh.ID, "error", err)
		return shift.NewShiftResponse(sh), nil
	}
	return responses[0], nil
}
