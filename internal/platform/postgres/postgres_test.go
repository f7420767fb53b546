package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Test timeout to prevent long-running tests
const testTimeout = 5 * time.Second

// checkIntegrationTestEnvironment checks if we're running in an environment
// where integration tests can be executed, by checking DATABASE_URL
func checkIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

var (
	migrateOnce sync.Once
	migrateErr  error
)

// getTestDB connects to the test database named by DATABASE_URL and
// brings its schema up to date. Migration runs once per test binary so
// parallel tests do not race goose's version table.
func getTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := Open(context.Background(), dbURL, nil)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	migrateOnce.Do(func() {
		migrateErr = Migrate(context.Background(), db, nil)
	})
	require.NoError(t, migrateErr, "Failed to migrate test database")
	return db
}

// withTestTx executes a function within a transaction and rolls it back
// afterward. This ensures that tests are isolated and don't affect each other.
func withTestTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		// Ignore error if transaction was already committed
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Error rolling back transaction: %v", err)
		}
	}()

	fn(tx)
}

// uniqueKey returns a card key that will not collide across parallel tests.
func uniqueKey(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
