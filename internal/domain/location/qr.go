package location

import (
	"encoding/json"
	"errors"
	"strings"
)

// QRTypeRestaurantClock tags QR payloads that may be used to clock in or out.
const QRTypeRestaurantClock = "restaurant_clock"

var (
	ErrMalformedQRData = errors.New("the scanned QR code could not be read")
	ErrInvalidQRType   = errors.New("this QR code is not a valid clock code")
)

// QRPayload is the JSON encoded in the clock QR code displayed at the restaurant.
type QRPayload struct {
	Type       string `json:"type"`
	LocationID string `json:"location_id,omitempty"`
	Code       string `json:"code,omitempty"`
}

func (p QRPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseQRPayload decodes scanned QR data and checks its type tag.
func ParseQRPayload(data string) (QRPayload, error) {
	var p QRPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &p); err != nil {
		return QRPayload{}, ErrMalformedQRData
	}
	if p.Type != QRTypeRestaurantClock {
		return QRPayload{}, ErrInvalidQRType
	}
	return p, nil
}
