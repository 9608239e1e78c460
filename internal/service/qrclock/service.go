package qrclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/qrclock"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/timeclock-backend-go/internal/service/qrclock")

type QRClockServiceImpl struct {
	shiftRepo    shift.ShiftRepository
	locationRepo location.LocationRepository
	profileRepo  profile.ProfileRepository
	publisher    shift.ChangePublisher
	loc          *time.Location
	now          func() time.Time
}

// NewQRClockService builds the QR clock path. loc formats the clock-in time in
// the confirmation message.
func NewQRClockService(
	shiftRepo shift.ShiftRepository,
	locationRepo location.LocationRepository,
	profileRepo profile.ProfileRepository,
	publisher shift.ChangePublisher,
	loc *time.Location,
) qrclock.QRClockService {
	if loc == nil {
		loc = time.UTC
	}
	return &QRClockServiceImpl{
		shiftRepo:    shiftRepo,
		locationRepo: locationRepo,
		profileRepo:  profileRepo,
		publisher:    publisher,
		loc:          loc,
		now:          time.Now,
	}
}

// Clock implements qrclock.QRClockService.
func (s *QRClockServiceImpl) Clock(ctx context.Context, req qrclock.ClockRequest) (qrclock.ClockResponse, error) {
	ctx, span := tracer.Start(ctx, "qrclock.Clock")
	defer span.End()

	if err := req.Validate(); err != nil {
		return qrclock.ClockResponse{}, err
	}

	payload, err := location.ParseQRPayload(req.QRData)
	if err != nil {
		return qrclock.ClockResponse{}, err
	}

	callerID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return qrclock.ClockResponse{}, err
	}
	if callerID != req.UserID {
		slog.Warn("QR clock identity mismatch", "caller_id", callerID, "user_id", req.UserID)
		return qrclock.ClockResponse{}, qrclock.ErrIdentityMismatch
	}

	if err := s.verifyCode(ctx, payload); err != nil {
		return qrclock.ClockResponse{}, err
	}

	p, err := s.profileRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return qrclock.ClockResponse{}, qrclock.ErrProfileNotFound
		}
		return qrclock.ClockResponse{}, fmt.Errorf("failed to get profile: %w", err)
	}
	if p.IsBanned {
		return qrclock.ClockResponse{}, profile.ErrProfileBanned
	}

	// The client flag only picks the branch; each branch re-checks storage.
	if req.HasActiveShift {
		return s.clockOut(ctx, callerID)
	}
	return s.clockIn(ctx, callerID)
}

// verifyCode checks the rotating code when the restaurant has one enabled.
func (s *QRClockServiceImpl) verifyCode(ctx context.Context, payload location.QRPayload) error {
	loc, err := s.locationRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get restaurant location: %w", err)
	}
	if loc == nil || !loc.RequiresQRCode() {
		return nil
	}
	if payload.Code == "" || !utils.VerifyTOTP(payload.Code, *loc.QRSecret, s.now()) {
		return qrclock.ErrInvalidQRCode
	}
	return nil
}

func (s *QRClockServiceImpl) clockOut(ctx context.Context, userID string) (qrclock.ClockResponse, error) {
	open, err := s.shiftRepo.GetOpenByUserID(ctx, userID)
	if err != nil {
		return qrclock.ClockResponse{}, fmt.Errorf("failed to get active shift: %w", err)
	}
	if open == nil {
		return qrclock.ClockResponse{}, shift.ErrNoActiveShift
	}

	clockOut := s.now().UTC()
	closed, err := s.shiftRepo.Close(ctx, open.ID, clockOut, shift.RoundedMinutes(open.ClockIn, clockOut))
	if err != nil {
		if errors.Is(err, shift.ErrShiftAlreadyClosed) || errors.Is(err, shift.ErrShiftNotFound) {
			return qrclock.ClockResponse{}, shift.ErrNoActiveShift
		}
		return qrclock.ClockResponse{}, fmt.Errorf("failed to close shift: %w", err)
	}

	s.publish(ctx, closed, shift.ChangeClockOut)
	slog.Info("Worker clocked out by QR", "user_id", userID, "shift_id", closed.ID)

	resp := shift.NewShiftResponse(closed)
	return qrclock.ClockResponse{
		Success: true,
		Action:  qrclock.ActionClockOut,
		Message: workedMessage(*closed.DurationMinutes),
		Shift:   &resp,
	}, nil
}

func (s *QRClockServiceImpl) clockIn(ctx context.Context, userID string) (qrclock.ClockResponse, error) {
	open, err := s.shiftRepo.GetOpenByUserID(ctx, userID)
	if err != nil {
		return qrclock.ClockResponse{}, fmt.Errorf("failed to check active shift: %w", err)
	}
	if open != nil {
		return qrclock.ClockResponse{}, shift.ErrActiveShiftExists
	}

	id, err := uuid.NewV7()
	if err != nil {
		return qrclock.ClockResponse{}, fmt.Errorf("failed to generate shift id: %w", err)
	}

	created, err := s.shiftRepo.Create(ctx, shift.Shift{
		ID:          id.String(),
		UserID:      userID,
		ClockIn:     s.now().UTC(),
		EntryMethod: shift.EntryMethodQR,
	})
	if err != nil {
		if errors.Is(err, shift.ErrActiveShiftExists) {
			return qrclock.ClockResponse{}, err
		}
		return qrclock.ClockResponse{}, fmt.Errorf("failed to create shift: %w", err)
	}

	s.publish(ctx, created, shift.ChangeClockIn)
	slog.Info("Worker clocked in by QR", "user_id", userID, "shift_id", created.ID)

	resp := shift.NewShiftResponse(created)
	return qrclock.ClockResponse{
		Success: true,
		Action:  qrclock.ActionClockIn,
		Message: fmt.Sprintf("Clocked in at %s.", created.ClockIn.In(s.loc).Format("15:04")),
		Shift:   &resp,
	}, nil
}

func (s *QRClockServiceImpl) publish(ctx context.Context, sh shift.Shift, action shift.ChangeAction) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishShiftChange(ctx, shift.ChangeEvent{
		ShiftID:    sh.ID,
		UserID:     sh.UserID,
		Action:     action,
		OccurredAt: s.now().UTC(),
	})
}

func workedMessage(minutes int) string {
	return fmt.Sprintf("Clocked out. You worked %dh %dm.", minutes/60, minutes%60)
}
