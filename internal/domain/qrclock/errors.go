package qrclock

import "errors"

var (
	ErrInvalidBody      = errors.New("request body must be a JSON object")
	ErrMissingFields    = errors.New("userId and qrData are required")
	ErrInvalidQRCode    = errors.New("this QR code has expired, scan the code on the screen again")
	ErrIdentityMismatch = errors.New("you can only clock in or out for yourself")
	ErrProfileNotFound  = errors.New("no worker profile found for this account")
)
