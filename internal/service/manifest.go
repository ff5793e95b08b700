package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/manifest"
	"github.com/pkordes/erj-report/internal/section"
)

// Every manifest mutation drops the stored analysis; it is only valid for the
// vehicle list it was computed from.

// AddVehicle validates, normalizes and appends a vehicle to the R-7 manifest.
func (s *ReportService) AddVehicle(ctx context.Context, number string, v domain.Vehicle) (domain.Vehicle, error) {
	var out domain.Vehicle
	_, err := s.mutate(ctx, "service.ReportService.AddVehicle", number, func(r *domain.Report) error {
		var err error
		if out, err = section.Vehicles.Add(r, v); err != nil {
			return err
		}
		r.LastAnalysis = nil
		return nil
	})
	if err != nil {
		return domain.Vehicle{}, err
	}
	return out, nil
}

// UpdateVehicle replaces the vehicle identified by key, keeping its position.
func (s *ReportService) UpdateVehicle(ctx context.Context, number string, key uuid.UUID, v domain.Vehicle) (domain.Vehicle, error) {
	var out domain.Vehicle
	_, err := s.mutate(ctx, "service.ReportService.UpdateVehicle", number, func(r *domain.Report) error {
		var err error
		if out, err = section.Vehicles.Replace(r, key, v); err != nil {
			return err
		}
		r.LastAnalysis = nil
		return nil
	})
	if err != nil {
		return domain.Vehicle{}, err
	}
	return out, nil
}

// DeleteVehicle removes the vehicle identified by key.
func (s *ReportService) DeleteVehicle(ctx context.Context, number string, key uuid.UUID) error {
	_, err := s.mutate(ctx, "service.ReportService.DeleteVehicle", number, func(r *domain.Report) error {
		if err := section.Vehicles.Remove(r, key); err != nil {
			return err
		}
		r.LastAnalysis = nil
		return nil
	})
	return err
}

// ReorderVehicles rearranges the manifest into the order of keys. keys must
// name every vehicle exactly once, otherwise domain.ErrReorderRejected is
// returned and nothing is written.
func (s *ReportService) ReorderVehicles(ctx context.Context, number string, keys []uuid.UUID) (domain.Report, error) {
	return s.mutate(ctx, "service.ReportService.ReorderVehicles", number, func(r *domain.Report) error {
		ordered, err := manifest.Reorder(r.Manifest, keys)
		if err != nil {
			return err
		}
		r.Manifest = ordered
		r.LastAnalysis = nil
		return nil
	})
}

// UpdateManifestMeta replaces the R-7 header fields.
func (s *ReportService) UpdateManifestMeta(ctx context.Context, number string, meta domain.ManifestMeta) (domain.Report, error) {
	return s.mutate(ctx, "service.ReportService.UpdateManifestMeta", number, func(r *domain.Report) error {
		r.ManifestMeta = meta
		return nil
	})
}

// Analyze computes the manifest's length, mass and braking figures and
// stores them on the report as its last analysis.
func (s *ReportService) Analyze(ctx context.Context, number string) (domain.Analysis, error) {
	var a domain.Analysis
	_, err := s.mutate(ctx, "service.ReportService.Analyze", number, func(r *domain.Report) error {
		a = manifest.Analyze(r.Manifest)
		a.ComputedAt = s.now()
		r.LastAnalysis = &a
		return nil
	})
	if err != nil {
		return domain.Analysis{}, err
	}
	s.log.DebugContext(ctx, "manifest analyzed", "number", number, "pctTotal", a.PctTotal)
	return a, nil
}
