package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/erj-report/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgStore is the Postgres implementation of Store. Bodies live in a JSONB column.
type pgStore struct {
	db db
}

// NewPostgresStore constructs a Store backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresStore(db db) Store {
	return &pgStore{db: db}
}

// OpenPostgres creates a connection pool and verifies the database is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenPostgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repo.OpenPostgres: ping: %w", err)
	}
	return pool, nil
}

// Get retrieves one record by collection and key.
func (s *pgStore) Get(ctx context.Context, collection, key string) (Record, error) {
	const q = `
		SELECT collection, key, body, created_at, updated_at
		FROM records
		WHERE collection = @collection AND key = @key`

	row := s.db.QueryRow(ctx, q, pgx.NamedArgs{"collection": collection, "key": key})
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("repo.Store.Get: %w", err)
	}
	return rec, nil
}

// Put upserts a record. created_at is preserved on conflict.
func (s *pgStore) Put(ctx context.Context, collection, key string, body []byte) error {
	const q = `
		INSERT INTO records (collection, key, body)
		VALUES (@collection, @key, @body)
		ON CONFLICT (collection, key) DO UPDATE
		SET body       = EXCLUDED.body,
		    updated_at = now()`

	args := pgx.NamedArgs{
		"collection": collection,
		"key":        key,
		"body":       string(body),
	}
	if _, err := s.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.Store.Put: %w", err)
	}
	return nil
}

// Insert adds a record unless the key is taken.
func (s *pgStore) Insert(ctx context.Context, collection, key string, body []byte) error {
	const q = `
		INSERT INTO records (collection, key, body)
		VALUES (@collection, @key, @body)
		ON CONFLICT (collection, key) DO NOTHING`

	args := pgx.NamedArgs{
		"collection": collection,
		"key":        key,
		"body":       string(body),
	}
	tag, err := s.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.Store.Insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.Store.Insert: %w: %s/%s already exists", domain.ErrConflict, collection, key)
	}
	return nil
}

// List returns all records in a collection ordered by key.
func (s *pgStore) List(ctx context.Context, collection string) ([]Record, error) {
	const q = `
		SELECT collection, key, body, created_at, updated_at
		FROM records
		WHERE collection = @collection
		ORDER BY key`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"collection": collection})
	if err != nil {
		return nil, fmt.Errorf("repo.Store.List: %w", err)
	}
	defer rows.Close()

	recs, err := collectRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.Store.List: %w", err)
	}
	return recs, nil
}

// ListPaged returns one page of records, newest first, plus the collection size.
func (s *pgStore) ListPaged(ctx context.Context, collection string, p domain.PaginationParams) ([]Record, int64, error) {
	const countQ = `SELECT count(*) FROM records WHERE collection = @collection`

	var total int64
	if err := s.db.QueryRow(ctx, countQ, pgx.NamedArgs{"collection": collection}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.Store.ListPaged: count: %w", err)
	}

	const q = `
		SELECT collection, key, body, created_at, updated_at
		FROM records
		WHERE collection = @collection
		ORDER BY created_at DESC, key DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"collection": collection,
		"limit":      p.Limit,
		"offset":     p.Offset(),
	}
	rows, err := s.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.Store.ListPaged: %w", err)
	}
	defer rows.Close()

	recs, err := collectRecords(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.Store.ListPaged: %w", err)
	}
	return recs, total, nil
}

// Delete removes a record.
func (s *pgStore) Delete(ctx context.Context, collection, key string) error {
	const q = `DELETE FROM records WHERE collection = @collection AND key = @key`

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"collection": collection, "key": key})
	if err != nil {
		return fmt.Errorf("repo.Store.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.Store.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// NextCounterValue increments a counter in a single statement, so concurrent
// callers never observe the same value.
func (s *pgStore) NextCounterValue(ctx context.Context, name string) (int64, error) {
	const q = `
		INSERT INTO counters (name, value)
		VALUES (@name, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value`

	var v int64
	if err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}).Scan(&v); err != nil {
		return 0, fmt.Errorf("repo.Store.NextCounterValue: %w", err)
	}
	return v, nil
}

// Ping runs a trivial query.
func (s *pgStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("repo.Store.Ping: %w", err)
	}
	return nil
}

// scanner is satisfied by pgx.Row, pgx.Rows and *sql.Row(s), allowing
// scanRecord to be reused by both stores.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord maps a single database row into a Record.
func scanRecord(s scanner) (Record, error) {
	var rec Record
	err := s.Scan(&rec.Collection, &rec.Key, &rec.Body, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, domain.ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	recs := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return recs, nil
}
