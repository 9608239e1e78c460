package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var geofenceErr *shift.GeofenceError
	if errors.As(err, &geofenceErr) {
		OutsideGeofence(w, geofenceErr.Error(), geofenceErr.DistanceMeters, geofenceErr.RadiusMeters)
		return
	}

	switch {
	// Auth / profile errors
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, profile.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, profile.ErrProfileBanned):
		Forbidden(w, err.Error())

	// Shift domain errors
	case errors.Is(err, shift.ErrShiftNotFound), errors.Is(err, shift.ErrNoActiveShift):
		NotFound(w, err.Error())
	case errors.Is(err, shift.ErrActiveShiftExists), errors.Is(err, shift.ErrShiftAlreadyClosed):
		Conflict(w, err.Error())

	// Location domain errors
	case errors.Is(err, location.ErrLocationNotConfigured):
		PreconditionFailed(w, err.Error())

	// Storage and anything unexpected: not retried, surfaced as-is
	default:
		slog.Error("Request failed", "error", err)
		InternalServerError(w, err.Error())
	}
}
