package repo

import (
	"context"
	"fmt"

	"github.com/pkordes/erj-report/internal/domain"
)

// ReportRepo defines the persistence operations for reports.
// The service layer depends on this interface, not the concrete Store,
// which allows the service to be unit-tested with a mock.
type ReportRepo interface {
	// Get retrieves a report by its number.
	// Returns domain.ErrNotFound if no report with that number exists.
	Get(ctx context.Context, number string) (domain.Report, error)

	// Create stores a report under a number not used before.
	// Returns domain.ErrConflict if a report with that number exists.
	Create(ctx context.Context, r domain.Report) error

	// Save writes the whole report document, replacing any previous version.
	Save(ctx context.Context, r domain.Report) error

	// List returns every report. Used by take-over, which searches by train number.
	List(ctx context.Context) ([]domain.Report, error)

	// ListPaged returns one page of reports, newest first, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Report, int64, error)

	// NextCounter atomically increments the report counter and returns the new value.
	NextCounter(ctx context.Context) (int64, error)
}

type reportRepo struct {
	docs  docs[domain.Report]
	store Store
}

// NewReportRepo constructs a ReportRepo over the "reports" collection of s.
func NewReportRepo(s Store) ReportRepo {
	return &reportRepo{docs: docs[domain.Report]{store: s, collection: CollectionReports}, store: s}
}

func (r *reportRepo) Get(ctx context.Context, number string) (domain.Report, error) {
	rep, err := r.docs.get(ctx, number)
	if err != nil {
		return domain.Report{}, fmt.Errorf("repo.ReportRepo.Get: %w", err)
	}
	rep.EnsureKeys()
	return rep, nil
}

func (r *reportRepo) Create(ctx context.Context, rep domain.Report) error {
	if rep.Number == "" {
		return fmt.Errorf("repo.ReportRepo.Create: %w: report number is required", domain.ErrValidation)
	}
	if err := r.docs.insert(ctx, rep.Number, rep); err != nil {
		return fmt.Errorf("repo.ReportRepo.Create: %w", err)
	}
	return nil
}

func (r *reportRepo) Save(ctx context.Context, rep domain.Report) error {
	if rep.Number == "" {
		return fmt.Errorf("repo.ReportRepo.Save: %w: report number is required", domain.ErrValidation)
	}
	if err := r.docs.put(ctx, rep.Number, rep); err != nil {
		return fmt.Errorf("repo.ReportRepo.Save: %w", err)
	}
	return nil
}

func (r *reportRepo) List(ctx context.Context) ([]domain.Report, error) {
	reps, err := r.docs.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.ReportRepo.List: %w", err)
	}
	for i := range reps {
		reps[i].EnsureKeys()
	}
	return reps, nil
}

func (r *reportRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Report, int64, error) {
	reps, total, err := r.docs.listPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReportRepo.ListPaged: %w", err)
	}
	for i := range reps {
		reps[i].EnsureKeys()
	}
	return reps, total, nil
}

func (r *reportRepo) NextCounter(ctx context.Context) (int64, error) {
	v, err := r.store.NextCounterValue(ctx, CounterReports)
	if err != nil {
		return 0, fmt.Errorf("repo.ReportRepo.NextCounter: %w", err)
	}
	return v, nil
}
