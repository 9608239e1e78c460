package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
)

type LocationRepository struct {
	mu  sync.RWMutex
	loc *location.RestaurantLocation
	now func() time.Time
}

func NewLocationRepository() *LocationRepository {
	return &LocationRepository{now: time.Now}
}

func (r *LocationRepository) Get(ctx context.Context) (*location.RestaurantLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.loc == nil {
		return nil, nil
	}
	copied := *r.loc
	return &copied, nil
}

func (r *LocationRepository) Upsert(ctx context.Context, loc location.RestaurantLocation) (location.RestaurantLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.loc == nil {
		loc.CreatedAt = now
	} else {
		loc.ID = r.loc.ID
		loc.CreatedAt = r.loc.CreatedAt
	}
	loc.UpdatedAt = now

	stored := loc
	r.loc = &stored
	return loc, nil
}
