package qrclock

import "context"

// QRClockService clocks the authenticated worker in or out from a scanned QR code.
type QRClockService interface {
	Clock(ctx context.Context, req ClockRequest) (ClockResponse, error)
}
