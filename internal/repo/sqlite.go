package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql

	"github.com/pkordes/erj-report/internal/domain"
)

// sqliteTime is fixed-width so that timestamps sort lexically.
const sqliteTime = "2006-01-02 15:04:05.000000000"

// OpenSQLite opens a SQLite database file with WAL journaling and a busy
// timeout. SQLite allows a single writer, so the pool is capped at one
// connection.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	return db, nil
}

// sqliteStore is the SQLite implementation of Store. Bodies live in a TEXT column.
type sqliteStore struct {
	db  *sql.DB
	mu  sync.Mutex // serializes writers
	now func() time.Time
}

// NewSQLiteStore constructs a Store backed by db.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db, now: time.Now}
}

func (s *sqliteStore) stamp() string {
	return s.now().UTC().Format(sqliteTime)
}

// Get retrieves one record by collection and key.
func (s *sqliteStore) Get(ctx context.Context, collection, key string) (Record, error) {
	const q = `
		SELECT collection, key, body, created_at, updated_at
		FROM records
		WHERE collection = ? AND key = ?`

	rec, err := scanSQLiteRecord(s.db.QueryRowContext(ctx, q, collection, key))
	if err != nil {
		return Record{}, fmt.Errorf("repo.Store.Get: %w", err)
	}
	return rec, nil
}

// Put upserts a record. created_at is preserved on conflict.
func (s *sqliteStore) Put(ctx context.Context, collection, key string, body []byte) error {
	const q = `
		INSERT INTO records (collection, key, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE
		SET body       = excluded.body,
		    updated_at = excluded.updated_at`

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	if _, err := s.db.ExecContext(ctx, q, collection, key, string(body), now, now); err != nil {
		return fmt.Errorf("repo.Store.Put: %w", err)
	}
	return nil
}

// Insert adds a record unless the key is taken.
func (s *sqliteStore) Insert(ctx context.Context, collection, key string, body []byte) error {
	const q = `
		INSERT INTO records (collection, key, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, key) DO NOTHING`

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	res, err := s.db.ExecContext(ctx, q, collection, key, string(body), now, now)
	if err != nil {
		return fmt.Errorf("repo.Store.Insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo.Store.Insert: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repo.Store.Insert: %w: %s/%s already exists", domain.ErrConflict, collection, key)
	}
	return nil
}

// List returns all records in a collection ordered by key.
func (s *sqliteStore) List(ctx context.Context, collection string) ([]Record, error) {
	const q = `
		SELECT collection, key, body, created_at, updated_at
		FROM records
		WHERE collection = ?
		ORDER BY key`

	rows, err := s.db.QueryContext(ctx, q, collection)
	if err != nil {
		return nil, fmt.Errorf("repo.Store.List: %w", err)
	}
	defer rows.Close()

	recs, err := collectSQLiteRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.Store.List: %w", err)
	}
	return recs, nil
}

// ListPaged returns one page of records, newest first, plus the collection size.
func (s *sqliteStore) ListPaged(ctx context.Context, collection string, p domain.PaginationParams) ([]Record, int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records WHERE collection = ?`, collection).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.Store.ListPaged: count: %w", err)
	}

	const q = `
		SELECT collection, key, body, created_at, updated_at
		FROM records
		WHERE collection = ?
		ORDER BY created_at DESC, key DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, q, collection, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("repo.Store.ListPaged: %w", err)
	}
	defer rows.Close()

	recs, err := collectSQLiteRecords(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.Store.ListPaged: %w", err)
	}
	return recs, total, nil
}

// Delete removes a record.
func (s *sqliteStore) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND key = ?`, collection, key)
	if err != nil {
		return fmt.Errorf("repo.Store.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo.Store.Delete: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repo.Store.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// NextCounterValue increments a counter in a single upsert statement.
func (s *sqliteStore) NextCounterValue(ctx context.Context, name string) (int64, error) {
	const q = `
		INSERT INTO counters (name, value)
		VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = value + 1
		RETURNING value`

	s.mu.Lock()
	defer s.mu.Unlock()

	var v int64
	if err := s.db.QueryRowContext(ctx, q, name).Scan(&v); err != nil {
		return 0, fmt.Errorf("repo.Store.NextCounterValue: %w", err)
	}
	return v, nil
}

// Ping verifies the database file is reachable.
func (s *sqliteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("repo.Store.Ping: %w", err)
	}
	return nil
}

// scanSQLiteRecord maps a row into a Record, parsing the TEXT timestamps.
func scanSQLiteRecord(s scanner) (Record, error) {
	var (
		rec              Record
		body             string
		created, updated string
	)
	err := s.Scan(&rec.Collection, &rec.Key, &body, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, domain.ErrNotFound
		}
		return Record{}, err
	}
	rec.Body = []byte(body)
	if rec.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(sqliteTime, updated); err != nil {
		return Record{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return rec, nil
}

func collectSQLiteRecords(rows *sql.Rows) ([]Record, error) {
	recs := []Record{}
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
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
