package location

import "time"

// RestaurantLocation is the single geofence reference point. At most one row exists.
type RestaurantLocation struct {
	ID           string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	QRSecret     *string // TOTP secret; nil means the QR code carries no rotating code
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l *RestaurantLocation) RequiresQRCode() bool {
	return l.QRSecret != nil && *l.QRSecret != ""
}
