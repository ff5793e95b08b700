// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, the operator CLI and server bootstrap.
//
// Each supported database has its own directory because the record body
// column differs (JSONB on Postgres, TEXT on SQLite).
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres and SQLite hold the migration files for each dialect, rooted so
// goose sees the *.sql files at the top level.
var (
	Postgres = mustSub("postgres")
	SQLite   = mustSub("sqlite")
)

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic("migrations: " + err.Error())
	}
	return sub
}

// For returns the goose dialect and migration files for a DB_DRIVER value.
func For(driver string) (goose.Dialect, fs.FS, error) {
	switch driver {
	case "postgres":
		return goose.DialectPostgres, Postgres, nil
	case "sqlite":
		return goose.DialectSQLite3, SQLite, nil
	default:
		return "", nil, fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// Up applies every pending migration for driver and returns the versions applied.
func Up(ctx context.Context, driver string, db *sql.DB) ([]int64, error) {
	dialect, fsys, err := For(driver)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: %w", err)
	}
	versions := make([]int64, 0, len(results))
	for _, r := range results {
		versions = append(versions, r.Source.Version)
	}
	return versions, nil
}
