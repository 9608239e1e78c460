package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

var tracer = otel.Tracer("github.com/cmlabs-hris/timeclock-backend-go/internal/service/shift")

type ShiftServiceImpl struct {
	shift.ShiftRepository
	location.LocationRepository
	profile.ProfileRepository
	publisher shift.ChangePublisher
	now       func() time.Time
}

func NewShiftService(
	shiftRepo shift.ShiftRepository,
	locationRepo location.LocationRepository,
	profileRepo profile.ProfileRepository,
	publisher shift.ChangePublisher,
) shift.ShiftService {
	return &ShiftServiceImpl{
		ShiftRepository:    shiftRepo,
		LocationRepository: locationRepo,
		ProfileRepository:  profileRepo,
		publisher:          publisher,
		now:                time.Now,
	}
}

// ClockIn implements shift.ShiftService.
func (s *ShiftServiceImpl) ClockIn(ctx context.Context, req shift.ClockInRequest) (shift.ShiftResponse, error) {
	ctx, span := tracer.Start(ctx, "shift.ClockIn")
	defer span.End()

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	loc, err := s.LocationRepository.Get(ctx)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to get restaurant location: %w", err)
	}
	if loc == nil {
		return shift.ShiftResponse{}, location.ErrLocationNotConfigured
	}

	lat, lng := *req.Latitude, *req.Longitude

	// The client's own geofence verdict is never trusted.
	result := utils.EvaluateGeofence(lat, lng, loc.Latitude, loc.Longitude, loc.RadiusMeters)
	span.SetAttributes(attribute.Float64("geofence.distance_m", result.DistanceMeters))
	if !result.Within {
		return shift.ShiftResponse{}, &shift.GeofenceError{
			DistanceMeters: result.DistanceMeters,
			RadiusMeters:   loc.RadiusMeters,
		}
	}

	if err := s.checkNotBanned(ctx, userID); err != nil {
		return shift.ShiftResponse{}, err
	}

	open, err := s.ShiftRepository.GetOpenByUserID(ctx, userID)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to check active shift: %w", err)
	}
	if open != nil {
		return shift.ShiftResponse{}, shift.ErrActiveShiftExists
	}

	id, err := uuid.NewV7()
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to generate shift id: %w", err)
	}

	created, err := s.ShiftRepository.Create(ctx, shift.Shift{
		ID:               id.String(),
		UserID:           userID,
		ClockIn:          s.now().UTC(),
		ClockInLatitude:  &lat,
		ClockInLongitude: &lng,
		EntryMethod:      shift.EntryMethodGPS,
	})
	if err != nil {
		// a concurrent clock-in won the race on the unique index
		if errors.Is(err, shift.ErrActiveShiftExists) {
			return shift.ShiftResponse{}, err
		}
		slog.Error("Failed to create shift", "user_id", userID, "error", err)
		return shift.ShiftResponse{}, fmt.Errorf("failed to create shift: %w", err)
	}

	slog.Info("Worker clocked in", "user_id", userID, "shift_id", created.ID, "distance_m", result.DistanceMeters)
	s.publish(ctx, created, shift.ChangeClockIn)

	return shift.NewShiftResponse(created), nil
}

// ClockOut implements shift.ShiftService.
func (s *ShiftServiceImpl) ClockOut(ctx context.Context) (shift.ShiftResponse, error) {
	ctx, span := tracer.Start(ctx, "shift.ClockOut")
	defer span.End()

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return shift.ShiftResponse{}, err
	}

	open, err := s.ShiftRepository.GetOpenByUserID(ctx, userID)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to get active shift: %w", err)
	}
	if open == nil {
		return shift.ShiftResponse{}, shift.ErrNoActiveShift
	}

	clockOut := s.now().UTC()
	closed, err := s.ShiftRepository.Close(ctx, open.ID, clockOut, shift.RoundedMinutes(open.ClockIn, clockOut))
	if err != nil {
		// closed by an admin or a second device in the meantime
		if errors.Is(err, shift.ErrShiftAlreadyClosed) || errors.Is(err, shift.ErrShiftNotFound) {
			return shift.ShiftResponse{}, shift.ErrNoActiveShift
		}
		slog.Error("Failed to close shift", "user_id", userID, "shift_id", open.ID, "error", err)
		return shift.ShiftResponse{}, fmt.Errorf("failed to close shift: %w", err)
	}

	slog.Info("Worker clocked out", "user_id", userID, "shift_id", closed.ID, "duration_minutes", *closed.DurationMinutes)
	s.publish(ctx, closed, shift.ChangeClockOut)

	return shift.NewShiftResponse(closed), nil
}

// GetActiveShift implements shift.ShiftService.
func (s *ShiftServiceImpl) GetActiveShift(ctx context.Context) (*shift.ShiftResponse, error) {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	open, err := s.ShiftRepository.GetOpenByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active shift: %w", err)
	}
	if open == nil {
		return nil, nil
	}

	resp := shift.NewShiftResponse(*open)
	return &resp, nil
}

// GetShiftHistory implements shift.ShiftService.
func (s *ShiftServiceImpl) GetShiftHistory(ctx context.Context, limit int) ([]shift.ShiftResponse, error) {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	shifts, err := s.ShiftRepository.ListByUserID(ctx, userID, clampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get shift history: %w", err)
	}

	responses := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		responses = append(responses, shift.NewShiftResponse(sh))
	}
	return responses, nil
}

// checkNotBanned rejects banned workers. Workers without a profile row yet
// are let through: the identity provider creates profiles asynchronously.
func (s *ShiftServiceImpl) checkNotBanned(ctx context.Context, userID string) error {
	p, err := s.ProfileRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if p.IsBanned {
		return profile.ErrProfileBanned
	}
	return nil
}

func (s *ShiftServiceImpl) publish(ctx context.Context, sh shift.Shift, action shift.ChangeAction) {
	publishChange(ctx, s.publisher, s.now, sh, action)
}

func publishChange(ctx context.Context, publisher shift.ChangePublisher, now func() time.Time, sh shift.Shift, action shift.ChangeAction) {
	if publisher == nil {
		return
	}
	publisher.PublishShiftChange(ctx, shift.ChangeEvent{
		ShiftID:    sh.ID,
		UserID:     sh.UserID,
		Action:     action,
		OccurredAt: now().UTC(),
	})
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
