package testutil_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/erj-report/internal/repo"
	"github.com/pkordes/erj-report/migrations"
	"github.com/pkordes/erj-report/testutil"
)

var tables = []string{"records", "counters"}

// TestMigrations verifies the full migration round-trip against a real
// Postgres database: up, every table present, down to 0, every table gone.
//
// The test is skipped automatically when TEST_DATABASE_URL is not set.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Postgres)
	require.NoError(t, err, "create goose provider")

	ctx := context.Background()

	// Another package's TestMain may have already applied migrations against this
	// shared test DB. Reset to version 0 first so this test is order-independent.
	if _, err := provider.DownTo(ctx, 0); err != nil {
		t.Fatalf("TestMigrations: initial reset: %v", err)
	}

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, 2)

	for _, table := range tables {
		assertTablePresence(t, db, pgTableQuery, table, true)
	}

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range tables {
		assertTablePresence(t, db, pgTableQuery, table, false)
	}

	// Leave the schema in place for packages that run after this one.
	_, err = provider.Up(ctx)
	require.NoError(t, err, "goose up again")
}

func TestMigrations_SQLite(t *testing.T) {
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	versions, err := migrations.Up(ctx, "sqlite", db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, versions)

	for _, table := range tables {
		assertTablePresence(t, db, sqliteTableQuery, table, true)
	}

	again, err := migrations.Up(ctx, "sqlite", db)
	require.NoError(t, err)
	assert.Empty(t, again, "a second run applies nothing")

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.SQLite)
	require.NoError(t, err)
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err)

	for _, table := range tables {
		assertTablePresence(t, db, sqliteTableQuery, table, false)
	}
}

func TestMigrationsFor_UnknownDriver(t *testing.T) {
	_, _, err := migrations.For("mysql")
	assert.Error(t, err)
}

const (
	pgTableQuery = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	sqliteTableQuery = `
		SELECT EXISTS (
			SELECT 1 FROM sqlite_master
			WHERE type = 'table' AND name = ?
		)`
)

func assertTablePresence(t *testing.T, db *sql.DB, q, table string, shouldExist bool) {
	t.Helper()

	var exists bool
	err := db.QueryRowContext(context.Background(), q, table).Scan(&exists)
	require.NoError(t, err, "check table existence for %q", table)

	if shouldExist {
		assert.True(t, exists, "expected table %q to exist", table)
	} else {
		assert.False(t, exists, "expected table %q to not exist", table)
	}
}
