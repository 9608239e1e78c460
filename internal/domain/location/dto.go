package location

import (
	"math"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// MaxRadiusMeters caps the geofence so a typo can't turn it into a city-wide circle.
const MaxRadiusMeters = 10000

type SaveLocationRequest struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	// RequireQRCode toggles the rotating code; nil leaves the current setting untouched
	RequireQRCode *bool `json:"require_qr_code,omitempty"`
}

func (r *SaveLocationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if math.IsNaN(r.RadiusMeters) || r.RadiusMeters <= 0 || r.RadiusMeters > MaxRadiusMeters {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be greater than 0 and at most 10000",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LocationResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	RadiusMeters  float64 `json:"radius_meters"`
	RequireQRCode bool    `json:"require_qr_code"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func NewLocationResponse(l RestaurantLocation) LocationResponse {
	return LocationResponse{
		ID:            l.ID,
		Name:          l.Name,
		Latitude:      l.Latitude,
		Longitude:     l.Longitude,
		RadiusMeters:  l.RadiusMeters,
		RequireQRCode: l.RequiresQRCode(),
		CreatedAt:     l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type QRPayloadResponse struct {
	Payload   string  `json:"payload"`
	ExpiresAt *string `json:"expires_at,omitempty"`
}
