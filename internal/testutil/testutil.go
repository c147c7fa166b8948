// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"flightdeals/internal/db"
)

// TestDB creates a test database connection and returns a cleanup function.
// Uses TEST_DATABASE_URL and skips the test when it is not set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM deal_alerts")
	pool.Exec(ctx, "DELETE FROM runs")
}

// CreateTestRun inserts a finished, successful run and returns its ID.
func CreateTestRun(t *testing.T, database *db.DB, startedAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := database.Pool.Exec(context.Background(), `
		INSERT INTO runs (id, started_at, finished_at)
		VALUES ($1, $2, $3)
	`, id, startedAt, startedAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("failed to create test run: %v", err)
	}

	return id
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, database *db.DB, table string) int {
	t.Helper()

	var n int
	if err := database.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
