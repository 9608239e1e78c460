package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// openShiftIndex is the unique partial index allowing one open shift per user
const openShiftIndex = "shifts_one_open_per_user"

const shiftColumns = `
	id, user_id, clock_in, clock_out, clock_in_latitude, clock_in_longitude,
	duration_minutes, entry_method, created_at, updated_at`

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

func scanShift(row pgx.Row) (shift.Shift, error) {
	var s shift.Shift
	err := row.Scan(
		&s.ID, &s.UserID, &s.ClockIn, &s.ClockOut, &s.ClockInLatitude, &s.ClockInLongitude,
		&s.DurationMinutes, &s.EntryMethod, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func collectShifts(rows pgx.Rows) ([]shift.Shift, error) {
	defer rows.Close()

	shifts := make([]shift.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}
	return shifts, nil
}

// Create implements shift.ShiftRepository.
func (r *shiftRepository) Create(ctx context.Context, newShift shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shifts (
			id, user_id, clock_in, clock_out, clock_in_latitude, clock_in_longitude,
			duration_minutes, entry_method
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + shiftColumns

	created, err := scanShift(q.QueryRow(ctx, query,
		newShift.ID,
		newShift.UserID,
		newShift.ClockIn,
		newShift.ClockOut,
		newShift.ClockInLatitude,
		newShift.ClockInLongitude,
		newShift.DurationMinutes,
		newShift.EntryMethod,
	))
	if err != nil {
		if database.IsUniqueViolation(err, openShiftIndex) {
			return shift.Shift{}, shift.ErrActiveShiftExists
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return created, nil
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	s, err := scanShift(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift by id: %w", err)
	}

	return s, nil
}

// GetOpenByUserID implements shift.ShiftRepository.
func (r *shiftRepository) GetOpenByUserID(ctx context.Context, userID string) (*shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE user_id = $1
		  AND clock_out IS NULL
		ORDER BY clock_in DESC
		LIMIT 1
	`

	s, err := scanShift(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open shift: %w", err)
	}

	return &s, nil
}

// Close implements shift.ShiftRepository.
func (r *shiftRepository) Close(ctx context.Context, id string, clockOut time.Time, durationMinutes int) (shift.Shift, error) {
	var closed shift.Shift

	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		query := `
			UPDATE shifts
			SET clock_out = $2, duration_minutes = $3, updated_at = NOW()
			WHERE id = $1
			  AND clock_out IS NULL
			RETURNING ` + shiftColumns

		s, err := scanShift(q.QueryRow(txCtx, query, id, clockOut, durationMinutes))
		if err == nil {
			closed = s
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to close shift: %w", err)
		}

		// Nothing updated: tell a missing row apart from one closed meanwhile.
		var exists bool
		if err := q.QueryRow(txCtx, `SELECT EXISTS(SELECT 1 FROM shifts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check shift: %w", err)
		}
		if !exists {
			return shift.ErrShiftNotFound
		}
		return shift.ErrShiftAlreadyClosed
	})
	if err != nil {
		return shift.Shift{}, err
	}

	return closed, nil
}

// UpdateTimes implements shift.ShiftRepository.
func (r *shiftRepository) UpdateTimes(ctx context.Context, id string, clockIn time.Time, clockOut *time.Time, durationMinutes *int) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts
		SET clock_in = $2, clock_out = $3, duration_minutes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + shiftColumns

	s, err := scanShift(q.QueryRow(ctx, query, id, clockIn, clockOut, durationMinutes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		if database.IsUniqueViolation(err, openShiftIndex) {
			return shift.Shift{}, shift.ErrActiveShiftExists
		}
		return shift.Shift{}, fmt.Errorf("failed to update shift: %w", err)
	}

	return s, nil
}

// Delete implements shift.ShiftRepository.
func (r *shiftRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}

	return nil
}

// ListByUserID implements shift.ShiftRepository.
func (r *shiftRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE user_id = $1
		ORDER BY clock_in DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	return collectShifts(rows)
}

// List implements shift.ShiftRepository.
func (r *shiftRepository) List(ctx context.Context, rng shift.ShiftRange) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE ($1::timestamptz IS NULL OR clock_in >= $1)
		  AND ($2::timestamptz IS NULL OR clock_in < $2)
		ORDER BY clock_in DESC
	`

	rows, err := q.Query(ctx, query, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	return collectShifts(rows)
}

// ListOpen implements shift.ShiftRepository.
func (r *shiftRepository) ListOpen(ctx context.Context) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE clock_out IS NULL
		ORDER BY clock_in DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active shifts: %w", err)
	}

	return collectShifts(rows)
}
