package profile

import (
	"context"
	"errors"
	"fmt"
)

// RequireRole loads the caller's profile from storage and checks its role.
// The role claim of the access token is not trusted for this; every admin
// operation calls RequireRole before touching data.
func RequireRole(ctx context.Context, repo ProfileRepository, callerID string, role Role) (Profile, error) {
	if callerID == "" {
		return Profile{}, ErrUnauthorized
	}

	p, err := repo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return Profile{}, ErrUnauthorized
		}
		return Profile{}, fmt.Errorf("failed to load caller profile: %w", err)
	}

	if p.Role != role || p.IsBanned {
		return Profile{}, ErrUnauthorized
	}

	return p, nil
}
