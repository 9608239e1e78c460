package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const locationColumns = `id, name, latitude, longitude, radius_meters, qr_secret, created_at, updated_at`

type locationRepository struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) location.LocationRepository {
	return &locationRepository{db: db}
}

func scanLocation(row pgx.Row) (location.RestaurantLocation, error) {
	var l location.RestaurantLocation
	err := row.Scan(
		&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.RadiusMeters, &l.QRSecret,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Get implements location.LocationRepository.
func (r *locationRepository) Get(ctx context.Context) (*location.RestaurantLocation, error) {
	q := GetQuerier(ctx, r.db)

	l, err := scanLocation(q.QueryRow(ctx, `SELECT `+locationColumns+` FROM restaurant_locations LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get restaurant location: %w", err)
	}

	return &l, nil
}

// Upsert implements location.LocationRepository. The singleton constraint turns a
// second insert into an update of the existing row, which keeps its id.
func (r *locationRepository) Upsert(ctx context.Context, loc location.RestaurantLocation) (location.RestaurantLocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO restaurant_locations (id, name, latitude, longitude, radius_meters, qr_secret)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT restaurant_locations_singleton DO UPDATE
		SET name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			radius_meters = EXCLUDED.radius_meters,
			qr_secret = EXCLUDED.qr_secret,
			updated_at = NOW()
		RETURNING ` + locationColumns

	saved, err := scanLocation(q.QueryRow(ctx, query,
		loc.ID, loc.Name, loc.Latitude, loc.Longitude, loc.RadiusMeters, loc.QRSecret,
	))
	if err != nil {
		return location.RestaurantLocation{}, fmt.Errorf("failed to save restaurant location: %w", err)
	}

	return saved, nil
}
