package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL and runs migrations.
// Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, Migrate(ctx, db, nil), "Failed to run migrations")

	return db
}

// cleanupTestData removes rows created by tests in this package
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("DELETE FROM posts WHERE id LIKE 'test-%'")
	require.NoError(t, err, "Failed to cleanup test posts")

	_, err = db.Exec("DELETE FROM users WHERE id LIKE 'test-%'")
	require.NoError(t, err, "Failed to cleanup test users")
}
