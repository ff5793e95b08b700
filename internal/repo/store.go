// Package repo contains all database access logic for the eRJ API.
// Reports, users, the phonebook and the discount table are stored as JSON
// documents in named collections behind the Store interface, which has a
// Postgres and a SQLite implementation. No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"time"

	"github.com/pkordes/erj-report/internal/domain"
)

// Collection names.
const (
	CollectionUsers     = "users"
	CollectionReports   = "reports"
	CollectionPhonebook = "phonebook"
	CollectionDiscounts = "discounts"
)

// CounterReports is the counter that report numbers are drawn from.
const CounterReports = "reports"

// Record is one stored document.
type Record struct {
	Collection string
	Key        string
	Body       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store is CRUD over named collections keyed by natural identifiers, plus
// atomic named counters. The typed repos depend on this interface, which
// allows them to run unchanged on either database.
type Store interface {
	// Get returns the record stored under key.
	// Returns domain.ErrNotFound if there is none.
	Get(ctx context.Context, collection, key string) (Record, error)

	// Put inserts or fully replaces the record stored under key.
	Put(ctx context.Context, collection, key string, body []byte) error

	// Insert stores a new record. Returns domain.ErrConflict if the key is
	// already taken; the existing record is left as it was.
	Insert(ctx context.Context, collection, key string, body []byte) error

	// List returns every record in the collection ordered by key.
	List(ctx context.Context, collection string) ([]Record, error)

	// ListPaged returns one page of records, newest first, and the total
	// number of records in the collection.
	ListPaged(ctx context.Context, collection string, p domain.PaginationParams) ([]Record, int64, error)

	// Delete removes the record stored under key.
	// Returns domain.ErrNotFound if there is none.
	Delete(ctx context.Context, collection, key string) error

	// NextCounterValue atomically increments the named counter and returns
	// the new value. The first call for a name returns 1.
	NextCounterValue(ctx context.Context, name string) (int64, error)

	// Ping reports whether the database is reachable.
	Ping(ctx context.Context) error
}
