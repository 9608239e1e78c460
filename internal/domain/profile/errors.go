package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnauthorized    = errors.New("Unauthorized")
	ErrProfileBanned   = errors.New("your account has been blocked, contact your manager")
)
