package repo

import (
	"context"
	"fmt"

	"github.com/pkordes/erj-report/internal/domain"
)

// UserRepo defines the persistence operations for users, keyed by employee id.
type UserRepo interface {
	// Get retrieves a user by id. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (domain.User, error)

	// List returns all users ordered by id.
	List(ctx context.Context) ([]domain.User, error)

	// Save inserts or replaces a user.
	Save(ctx context.Context, u domain.User) error

	// Delete removes a user by id. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

type userRepo struct {
	docs docs[domain.User]
}

// NewUserRepo constructs a UserRepo over the "users" collection of s.
func NewUserRepo(s Store) UserRepo {
	return &userRepo{docs: docs[domain.User]{store: s, collection: CollectionUsers}}
}

func (r *userRepo) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := r.docs.get(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Get: %w", err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	users, err := r.docs.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	return users, nil
}

func (r *userRepo) Save(ctx context.Context, u domain.User) error {
	if err := r.docs.put(ctx, u.ID, u); err != nil {
		return fmt.Errorf("repo.UserRepo.Save: %w", err)
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	if err := r.docs.delete(ctx, id); err != nil {
		return fmt.Errorf("repo.UserRepo.Delete: %w", err)
	}
	return nil
}
