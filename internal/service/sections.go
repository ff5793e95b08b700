package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/section"
)

func lookupSection(name string) (section.Section, error) {
	s, ok := section.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("section %q: %w", name, domain.ErrNotFound)
	}
	return s, nil
}

// AddEntry decodes body as an entry of the named section (B–G) and appends it.
// It returns the stored entry, which carries its new key and, for stations,
// the derived minutes.
func (s *ReportService) AddEntry(ctx context.Context, number, name string, body []byte) (any, error) {
	const op = "service.ReportService.AddEntry"

	sec, err := lookupSection(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var entry any
	_, err = s.mutate(ctx, op, number, func(r *domain.Report) error {
		entry, err = sec.AddJSON(r, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry replaces the entry identified by key in the named section.
func (s *ReportService) UpdateEntry(ctx context.Context, number, name string, key uuid.UUID, body []byte) (any, error) {
	const op = "service.ReportService.UpdateEntry"

	sec, err := lookupSection(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var entry any
	_, err = s.mutate(ctx, op, number, func(r *domain.Report) error {
		entry, err = sec.ReplaceJSON(r, key, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes the entry identified by key from the named section.
func (s *ReportService) DeleteEntry(ctx context.Context, number, name string, key uuid.UUID) error {
	const op = "service.ReportService.DeleteEntry"

	sec, err := lookupSection(name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.mutate(ctx, op, number, func(r *domain.Report) error {
		return sec.Remove(r, key)
	})
	return err
}
