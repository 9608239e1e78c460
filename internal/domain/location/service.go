package location

import "context"

type LocationService interface {
	// Get returns the configured restaurant location, ErrLocationNotConfigured otherwise
	Get(ctx context.Context) (LocationResponse, error)

	// Save creates or updates the restaurant location (admin)
	Save(ctx context.Context, req SaveLocationRequest) (LocationResponse, error)

	// GetQRPayload returns the content to render as the clock QR code (admin)
	GetQRPayload(ctx context.Context) (QRPayloadResponse, error)
}
