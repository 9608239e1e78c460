package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/profile"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type profileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) profile.ProfileRepository {
	return &profileRepository{db: db}
}

// GetByID implements profile.ProfileRepository.
func (r *profileRepository) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, role, is_banned, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p profile.Profile
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.FullName, &p.Role, &p.IsBanned, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return p, nil
}

// GetByIDs implements profile.ProfileRepository.
func (r *profileRepository) GetByIDs(ctx context.Context, ids []string) ([]profile.Profile, error) {
	profiles := make([]profile.Profile, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, role, is_banned, created_at, updated_at
		FROM profiles
		WHERE id = ANY($1)
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p profile.Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Role, &p.IsBanned, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, nil
}
