package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a migrated connection to the database named by TEST_DATABASE_URL.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects and migrates, or skips the test when no database is configured.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, database.RunMigrations(dsn))

	db, err := database.NewPostgreSQLDB(context.Background(), dsn)
	require.NoError(t, err)

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables empties every table the repositories write to
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"shifts", "restaurant_locations", "profiles"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// InsertProfile writes a profile row the way the identity provider hook would.
func (s *TestDatabaseSetup) InsertProfile(t *testing.T, id, fullName, role string, banned bool) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(),
		`INSERT INTO profiles (id, full_name, role, is_banned) VALUES ($1, $2, $3, $4)`,
		id, fullName, role, banned)
	require.NoError(t, err)
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
