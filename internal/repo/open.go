package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/erj-report/migrations"
)

// Options selects and locates the backing database.
type Options struct {
	// Driver is "postgres" or "sqlite".
	Driver      string
	DatabaseURL string
	SQLitePath  string
	// Migrate applies pending migrations before the store is returned.
	Migrate bool
}

// Open connects to the database described by opts and returns a Store on it.
// The returned close function releases every connection Open created.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	switch opts.Driver {
	case "postgres":
		pool, err := OpenPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if opts.Migrate {
			db := stdlib.OpenDBFromPool(pool)
			_, err := migrate(ctx, opts.Driver, db)
			db.Close()
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return NewPostgresStore(pool), pool.Close, nil

	case "sqlite":
		db, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if opts.Migrate {
			if _, err := migrate(ctx, opts.Driver, db); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return NewSQLiteStore(db), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("repo.Open: unsupported driver %q", opts.Driver)
	}
}

// Migrate applies pending migrations for opts.Driver and returns the
// versions applied.
func Migrate(ctx context.Context, opts Options) ([]int64, error) {
	switch opts.Driver {
	case "postgres":
		pool, err := OpenPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()
		return migrate(ctx, opts.Driver, db)

	case "sqlite":
		db, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return migrate(ctx, opts.Driver, db)

	default:
		return nil, fmt.Errorf("repo.Migrate: unsupported driver %q", opts.Driver)
	}
}

func migrate(ctx context.Context, driver string, db *sql.DB) ([]int64, error) {
	versions, err := migrations.Up(ctx, driver, db)
	if err != nil {
		return nil, fmt.Errorf("repo.Migrate: %w", err)
	}
	return versions, nil
}
