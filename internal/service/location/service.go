package location

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/utils"
	"github.com/google/uuid"
)

// totpIssuer labels the QR secret in authenticator apps
const totpIssuer = "Timeclock"

type LocationServiceImpl struct {
	locationRepo location.LocationRepository
	profileRepo  profile.ProfileRepository
	now          func() time.Time
}

func NewLocationService(locationRepo location.LocationRepository, profileRepo profile.ProfileRepository) location.LocationService {
	return &LocationServiceImpl{
		locationRepo: locationRepo,
		profileRepo:  profileRepo,
		now:          time.Now,
	}
}

// Get implements location.LocationService.
func (s *LocationServiceImpl) Get(ctx context.Context) (location.LocationResponse, error) {
	if _, err := jwt.UserIDFromContext(ctx); err != nil {
		return location.LocationResponse{}, err
	}

	loc, err := s.configured(ctx)
	if err != nil {
		return location.LocationResponse{}, err
	}

	return location.NewLocationResponse(*loc), nil
}

// Save implements location.LocationService.
func (s *LocationServiceImpl) Save(ctx context.Context, req location.SaveLocationRequest) (location.LocationResponse, error) {
	admin, err := s.requireAdmin(ctx)
	if err != nil {
		return location.LocationResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return location.LocationResponse{}, err
	}

	existing, err := s.locationRepo.Get(ctx)
	if err != nil {
		return location.LocationResponse{}, fmt.Errorf("failed to get restaurant location: %w", err)
	}

	next := location.RestaurantLocation{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	}
	if existing != nil {
		next.ID = existing.ID
		next.QRSecret = existing.QRSecret
	} else {
		id, err := uuid.NewV7()
		if err != nil {
			return location.LocationResponse{}, fmt.Errorf("failed to generate location id: %w", err)
		}
		next.ID = id.String()
	}

	if req.RequireQRCode != nil {
		switch {
		case *req.RequireQRCode && !next.RequiresQRCode():
			secret, err := utils.GenerateTOTPSecret(totpIssuer, next.Name)
			if err != nil {
				return location.LocationResponse{}, fmt.Errorf("failed to generate QR secret: %w", err)
			}
			next.QRSecret = &secret
		case !*req.RequireQRCode:
			next.QRSecret = nil
		}
	}

	saved, err := s.locationRepo.Upsert(ctx, next)
	if err != nil {
		return location.LocationResponse{}, fmt.Errorf("failed to save restaurant location: %w", err)
	}

	slog.Info("Restaurant location saved", "admin_id", admin.ID, "radius_m", saved.RadiusMeters, "require_qr_code", saved.RequiresQRCode())

	return location.NewLocationResponse(saved), nil
}

// GetQRPayload implements location.LocationService.
func (s *LocationServiceImpl) GetQRPayload(ctx context.Context) (location.QRPayloadResponse, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return location.QRPayloadResponse{}, err
	}

	loc, err := s.configured(ctx)
	if err != nil {
		return location.QRPayloadResponse{}, err
	}

	payload := location.QRPayload{Type: location.QRTypeRestaurantClock, LocationID: loc.ID}
	var expiresAt *string

	if loc.RequiresQRCode() {
		now := s.now()
		code, err := utils.GenerateTOTPCode(*loc.QRSecret, now)
		if err != nil {
			return location.QRPayloadResponse{}, fmt.Errorf("failed to generate QR code: %w", err)
		}
		payload.Code = code

		period := int64(utils.QRCodePeriodSeconds)
		expiry := time.Unix((now.Unix()/period+1)*period, 0).UTC().Format(time.RFC3339)
		expiresAt = &expiry
	}

	encoded, err := payload.Encode()
	if err != nil {
		return location.QRPayloadResponse{}, fmt.Errorf("failed to encode QR payload: %w", err)
	}

	return location.QRPayloadResponse{Payload: encoded, ExpiresAt: expiresAt}, nil
}

func (s *LocationServiceImpl) configured(ctx context.Context) (*location.RestaurantLocation, error) {
	loc, err := s.locationRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant location: %w", err)
	}
	if loc == nil {
		return nil, location.ErrLocationNotConfigured
	}
	return loc, nil
}

func (s *LocationServiceImpl) requireAdmin(ctx context.Context) (profile.Profile, error) {
	callerID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return profile.Profile{}, profile.ErrUnauthorized
	}
	return profile.RequireRole(ctx, s.profileRepo, callerID, profile.RoleAdmin)
}
