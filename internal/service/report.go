package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/manifest"
	"github.com/pkordes/erj-report/internal/numbering"
	"github.com/pkordes/erj-report/internal/repo"
	"github.com/pkordes/erj-report/internal/section"
)

// ReportService implements the report lifecycle: creation and numbering,
// section A edits, take-over and JSON import. Section, manifest and export
// operations live in their own files on the same type.
//
// Every mutation loads the stored document, applies the change to that copy
// and writes the whole document back once. A rejected change or a failed
// write therefore leaves the stored report as it was.
type ReportService struct {
	reports repo.ReportRepo
	authz   Authorizer
	log     *slog.Logger
	now     func() time.Time
}

// NewReportService constructs a ReportService. authz and logger may be nil.
func NewReportService(reports repo.ReportRepo, authz Authorizer, logger *slog.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		authz:   authz,
		log:     orDiscard(logger),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// createAttempts bounds how many counter values Create tries when the
// stamped number is already taken by an imported report.
const createAttempts = 10

// Create opens a new, empty report of the given kind for the calling actor.
// The report counter is incremented first and the number stamped from it
// with today's date, so numbers are never reused. A number already held by
// an imported report is skipped; the stored report is never overwritten.
func (s *ReportService) Create(ctx context.Context, kind domain.ReportKind) (domain.Report, error) {
	const op = "service.ReportService.Create"

	if kind == "" {
		kind = domain.KindTrip
	}
	if !kind.Valid() {
		return domain.Report{}, domain.NewFieldError("kind", "must be trip or manifest")
	}
	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionReportCreate}); err != nil {
		return domain.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	actor := domain.ActorFrom(ctx)
	if actor.ID == "" || actor.Name == "" {
		return domain.Report{}, fmt.Errorf("%s: %w", op, domain.NewFieldError("createdBy", "driver name and id are required"))
	}

	now := s.now()
	for range createAttempts {
		counter, err := s.reports.NextCounter(ctx)
		if err != nil {
			return domain.Report{}, storeErr(op, err)
		}
		r := domain.NewReport(numbering.For(kind, counter, now), kind, actor.Person(), now)

		err = s.reports.Create(ctx, r)
		if errors.Is(err, domain.ErrConflict) {
			s.log.WarnContext(ctx, "report number taken, skipping", "number", r.Number)
			continue
		}
		if err != nil {
			s.log.ErrorContext(ctx, "report save failed", "op", op, "number", r.Number, "error", err)
			return domain.Report{}, storeErr(op, err)
		}
		s.log.InfoContext(ctx, "report created", "number", r.Number, "kind", kind, "driver", actor.ID)
		return r, nil
	}
	return domain.Report{}, fmt.Errorf("%s: %w: no free report number after %d attempts", op, domain.ErrConflict, createAttempts)
}

// Get returns a report by number.
// Returns domain.ErrNotFound if no report with that number exists.
func (s *ReportService) Get(ctx context.Context, number string) (domain.Report, error) {
	const op = "service.ReportService.Get"

	r, err := s.reports.Get(ctx, number)
	if err != nil {
		return domain.Report{}, storeErr(op, err)
	}
	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionReportRead, Report: &r}); err != nil {
		return domain.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListPaged returns one page of reports, newest first, and the total count.
// Always returns a non-nil slice.
func (s *ReportService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Report, int64, error) {
	const op = "service.ReportService.ListPaged"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionReportRead}); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	reps, total, err := s.reports.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, storeErr(op, err)
	}
	if reps == nil {
		reps = []domain.Report{}
	}
	return reps, total, nil
}

// UpdateGeneral replaces section A. Station deviations are recomputed
// because section A's date is their fallback date.
func (s *ReportService) UpdateGeneral(ctx context.Context, number string, g domain.General) (domain.Report, error) {
	return s.mutate(ctx, "service.ReportService.UpdateGeneral", number, func(r *domain.Report) error {
		if err := section.ValidateGeneral(g); err != nil {
			return err
		}
		r.General = g
		section.RecomputeStations(r)
		return nil
	})
}

// TakeOver hands an existing report to the calling driver. The report is
// found by train number (substring match) or by the id of its creator or
// current driver, restricted to reports dated on date. When several match,
// the most recently created wins.
func (s *ReportService) TakeOver(ctx context.Context, trainNumber, date string) (domain.Report, error) {
	const op = "service.ReportService.TakeOver"

	trainNumber = strings.TrimSpace(trainNumber)
	if trainNumber == "" {
		return domain.Report{}, domain.NewFieldError("trainNumber", "is required")
	}
	if date == "" {
		return domain.Report{}, domain.NewFieldError("date", "is required")
	}
	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionReportTakeOver}); err != nil {
		return domain.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	actor := domain.ActorFrom(ctx)
	if actor.ID == "" {
		return domain.Report{}, fmt.Errorf("%s: %w", op, domain.NewFieldError("takenBy", "driver id is required"))
	}

	all, err := s.reports.List(ctx)
	if err != nil {
		return domain.Report{}, storeErr(op, err)
	}
	var (
		found domain.Report
		ok    bool
	)
	for _, r := range all {
		if !matchesTakeOver(r, trainNumber, date) {
			continue
		}
		if !ok || r.CreatedAt.After(found.CreatedAt) {
			found, ok = r, true
		}
	}
	if !ok {
		return domain.Report{}, fmt.Errorf("%s: no report for train %q on %s: %w", op, trainNumber, date, domain.ErrNotFound)
	}

	now := s.now()
	found.TakenBy = &domain.TakeOver{Name: actor.Name, ID: actor.ID, At: now}
	found.CurrentDriver = actor.Person()
	found.LastEditedAt = &now
	if err := s.reports.Save(ctx, found); err != nil {
		s.log.ErrorContext(ctx, "report save failed", "op", op, "number", found.Number, "error", err)
		return domain.Report{}, storeErr(op, err)
	}
	s.log.InfoContext(ctx, "report taken over", "number", found.Number, "driver", actor.ID)
	return found, nil
}

func matchesTakeOver(r domain.Report, trainNumber, date string) bool {
	if r.General.Date != date {
		return false
	}
	return strings.Contains(r.General.TrainNumber, trainNumber) ||
		r.CreatedBy.ID == trainNumber ||
		r.CurrentDriver.ID == trainNumber
}

// Import stores a full report document received as JSON, replacing any
// report with the same number. Replacing requires write access to the
// stored report. Missing keys are assigned, every collection is validated
// and station minutes are recomputed; client-supplied derived values and
// analysis are not trusted.
func (s *ReportService) Import(ctx context.Context, r domain.Report) (domain.Report, error) {
	const op = "service.ReportService.Import"

	if strings.TrimSpace(r.Number) == "" {
		return domain.Report{}, domain.NewFieldError("number", "is required")
	}
	if r.Kind == "" {
		r.Kind = domain.KindTrip
		if strings.HasPrefix(r.Number, "R7-") {
			r.Kind = domain.KindManifest
		}
	}
	if !r.Kind.Valid() {
		return domain.Report{}, domain.NewFieldError("kind", "must be trip or manifest")
	}
	r.EnsureKeys()
	if err := section.ValidateReport(r); err != nil {
		return domain.Report{}, err
	}

	actor := domain.ActorFrom(ctx)
	if r.CurrentDriver.ID == "" {
		r.CurrentDriver = actor.Person()
	}
	if r.CreatedBy.ID == "" {
		r.CreatedBy = r.CurrentDriver
	}

	// Replacing a stored report needs write access to the stored copy;
	// the incoming document cannot grant it to itself.
	existing, err := s.reports.Get(ctx, r.Number)
	switch {
	case err == nil:
		if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionReportWrite, Report: &existing}); err != nil {
			return domain.Report{}, fmt.Errorf("%s: %w", op, err)
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.Report{}, storeErr(op, err)
	}
	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionReportImport, Report: &r}); err != nil {
		return domain.Report{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.LastEditedAt = &now
	for i := range r.Manifest {
		r.Manifest[i] = manifest.Normalize(r.Manifest[i])
	}
	section.RecomputeStations(&r)
	r.LastAnalysis = nil

	if err := s.reports.Save(ctx, r); err != nil {
		s.log.ErrorContext(ctx, "report save failed", "op", op, "number", r.Number, "error", err)
		return domain.Report{}, storeErr(op, err)
	}
	s.log.InfoContext(ctx, "report imported", "number", r.Number)
	return r, nil
}

// mutate applies fn to a freshly loaded copy of the report and saves it.
// The caller must be allowed to write the report.
func (s *ReportService) mutate(ctx context.Context, op, number string, fn func(*domain.Report) error) (domain.Report, error) {
	r, err := s.reports.Get(ctx, number)
	if err != nil {
		return domain.Report{}, storeErr(op, err)
	}
	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionReportWrite, Report: &r}); err != nil {
		return domain.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := fn(&r); err != nil {
		return domain.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()
	r.LastEditedAt = &now
	if err := s.reports.Save(ctx, r); err != nil {
		s.log.ErrorContext(ctx, "report save failed", "op", op, "number", number, "error", err)
		return domain.Report{}, storeErr(op, err)
	}
	return r, nil
}
