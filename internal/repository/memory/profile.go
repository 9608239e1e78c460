package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
)

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]profile.Profile)}
}

// Put stores p, replacing any profile with the same id. Profiles normally come
// from the identity provider, so this is only used for seeding.
func (r *ProfileRepository) Put(p profile.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.profiles[p.ID] = p
}

// Seed loads "id:full name:role" entries.
func (r *ProfileRepository) Seed(entries []string) error {
	for _, entry := range entries {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return fmt.Errorf("invalid profile seed %q, expected id:name:role", entry)
		}
		if !profile.IsValidRole(parts[2]) {
			return fmt.Errorf("invalid role %q for profile %s", parts[2], parts[0])
		}
		r.Put(profile.Profile{ID: parts[0], FullName: parts[1], Role: profile.Role(parts[2])})
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrProfileNotFound
	}
	return p, nil
}

func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profile.Profile, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
