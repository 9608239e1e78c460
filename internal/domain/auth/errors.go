package auth

import "errors"

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrNotAuthenticated = errors.New("you must be signed in to do this")
)
