package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "shifts_one_open_per_user"}
	wrapped := fmt.Errorf("insert shift: %w", pgErr)

	assert.True(t, IsUniqueViolation(wrapped, "shifts_one_open_per_user"))
	assert.True(t, IsUniqueViolation(wrapped, ""))
	assert.False(t, IsUniqueViolation(wrapped, "shifts_pkey"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}
