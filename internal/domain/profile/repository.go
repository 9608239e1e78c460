package profile

import "context"

// ProfileRepository reads profiles. Profiles are written by the identity provider's
// sign-up hook, so the backend only needs lookups.
type ProfileRepository interface {
	// GetByID returns ErrProfileNotFound when no profile exists
	GetByID(ctx context.Context, id string) (Profile, error)

	// GetByIDs returns the profiles that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]Profile, error)
}
