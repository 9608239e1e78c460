package location

import "context"

type LocationRepository interface {
	// Get returns nil when no location has been saved yet
	Get(ctx context.Context) (*RestaurantLocation, error)

	// Upsert creates the singleton row on first save and updates it afterwards
	Upsert(ctx context.Context, loc RestaurantLocation) (RestaurantLocation, error)
}
