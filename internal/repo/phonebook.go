package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkordes/erj-report/internal/domain"
)

// phonebookKey is the single document the phonebook is stored under.
// Replacing it in one write keeps an import all-or-nothing.
const phonebookKey = "directory"

// PhonebookRepo defines the persistence operations for the phone directory.
type PhonebookRepo interface {
	// Load returns the stored directory, or an empty slice if none was imported yet.
	Load(ctx context.Context) ([]domain.PhonebookEntry, error)

	// Replace overwrites the whole directory.
	Replace(ctx context.Context, entries []domain.PhonebookEntry) error
}

type phonebookRepo struct {
	docs docs[[]domain.PhonebookEntry]
}

// NewPhonebookRepo constructs a PhonebookRepo over the "phonebook" collection of s.
func NewPhonebookRepo(s Store) PhonebookRepo {
	return &phonebookRepo{docs: docs[[]domain.PhonebookEntry]{store: s, collection: CollectionPhonebook}}
}

func (r *phonebookRepo) Load(ctx context.Context) ([]domain.PhonebookEntry, error) {
	entries, err := r.docs.get(ctx, phonebookKey)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.PhonebookEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo.PhonebookRepo.Load: %w", err)
	}
	if entries == nil {
		entries = []domain.PhonebookEntry{}
	}
	return entries, nil
}

func (r *phonebookRepo) Replace(ctx context.Context, entries []domain.PhonebookEntry) error {
	if entries == nil {
		entries = []domain.PhonebookEntry{}
	}
	if err := r.docs.put(ctx, phonebookKey, entries); err != nil {
		return fmt.Errorf("repo.PhonebookRepo.Replace: %w", err)
	}
	return nil
}
