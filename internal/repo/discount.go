package repo

import (
	"context"
	"fmt"

	"github.com/pkordes/erj-report/internal/domain"
)

// discountsKey is the single document the discount table is stored under.
const discountsKey = "table"

// DiscountRepo defines the persistence operations for the statutory
// discount table.
type DiscountRepo interface {
	// Load returns the stored table.
	// Returns domain.ErrNotFound if no table was stored yet.
	Load(ctx context.Context) ([]domain.Discount, error)

	// Replace overwrites the whole table.
	Replace(ctx context.Context, discounts []domain.Discount) error
}

type discountRepo struct {
	docs docs[[]domain.Discount]
}

// NewDiscountRepo constructs a DiscountRepo over the "discounts" collection of s.
func NewDiscountRepo(s Store) DiscountRepo {
	return &discountRepo{docs: docs[[]domain.Discount]{store: s, collection: CollectionDiscounts}}
}

func (r *discountRepo) Load(ctx context.Context) ([]domain.Discount, error) {
	discounts, err := r.docs.get(ctx, discountsKey)
	if err != nil {
		return nil, fmt.Errorf("repo.DiscountRepo.Load: %w", err)
	}
	if discounts == nil {
		discounts = []domain.Discount{}
	}
	return discounts, nil
}

func (r *discountRepo) Replace(ctx context.Context, discounts []domain.Discount) error {
	if discounts == nil {
		discounts = []domain.Discount{}
	}
	if err := r.docs.put(ctx, discountsKey, discounts); err != nil {
		return fmt.Errorf("repo.DiscountRepo.Replace: %w", err)
	}
	return nil
}
