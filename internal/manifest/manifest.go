// Package manifest implements the R-7 vehicle manifest arithmetic: rounding,
// vehicle normalization and validation, train-level length/mass/braking
// analysis, and identity-checked reordering.
package manifest

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/erj-report/internal/domain"
)

// epsilon nudges values that sit a hair below .xx5 in binary floating point
// back over the rounding boundary (e.g. 1.005 stored as 1.00499999…).
const epsilon = 2.220446049250313e-16

// Round2 rounds x half-up to two decimal places.
func Round2(x float64) float64 {
	return float64(cents(x)) / 100
}

// cents returns x rounded half-up to an integer number of hundredths.
func cents(x float64) int64 {
	return int64(math.Floor((x+epsilon)*100 + 0.5))
}

// Normalize returns v with every numeric field rounded to two decimals.
func Normalize(v domain.Vehicle) domain.Vehicle {
	v.LengthMeters = Round2(v.LengthMeters)
	v.PayloadTons = Round2(v.PayloadTons)
	v.EmptyMassTons = Round2(v.EmptyMassTons)
	v.BrakeMassTons = Round2(v.BrakeMassTons)
	return v
}

// Validate checks the vehicle class and that every numeric field is a finite,
// non-negative number.
func Validate(v domain.Vehicle) error {
	if v.Class != domain.ClassLocomotive && v.Class != domain.ClassWagon {
		return domain.NewFieldError("class", "must be locomotive or wagon")
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"lengthMeters", v.LengthMeters},
		{"payloadTons", v.PayloadTons},
		{"emptyMassTons", v.EmptyMassTons},
		{"brakeMassTons", v.BrakeMassTons},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) || f.val < 0 {
			return domain.NewFieldError(f.name, "must be a non-negative number")
		}
	}
	return nil
}

// Analyze computes the train-level figures for a manifest.
//
// Each figure is the sum of the raw per-vehicle values rounded once to
// hundredths. Terms are added in ascending order so the result does not
// depend on vehicle order. Totals and braking percentages are derived from
// the rounded class figures; percentages are 0 when the mass is 0.
func Analyze(vehicles []domain.Vehicle) domain.Analysis {
	var (
		length                      []float64
		massWagons, massLocos       []float64
		brakeWagons, brakeLocos     []float64
		wagonCount, locomotiveCount int
	)
	for _, v := range vehicles {
		length = append(length, v.LengthMeters)
		switch v.Class {
		case domain.ClassWagon:
			wagonCount++
			massWagons = append(massWagons, v.EmptyMassTons+v.PayloadTons)
			brakeWagons = append(brakeWagons, v.BrakeMassTons)
		case domain.ClassLocomotive:
			locomotiveCount++
			massLocos = append(massLocos, v.EmptyMassTons+v.PayloadTons)
			brakeLocos = append(brakeLocos, v.BrakeMassTons)
		}
	}

	a := domain.Analysis{
		Length:           sum2(length),
		MassWagons:       sum2(massWagons),
		MassLocomotives:  sum2(massLocos),
		BrakeWagons:      sum2(brakeWagons),
		BrakeLocomotives: sum2(brakeLocos),
		WagonCount:       wagonCount,
		LocomotiveCount:  locomotiveCount,
	}
	a.MassTotal = Round2(a.MassWagons + a.MassLocomotives)
	a.BrakeTotal = Round2(a.BrakeWagons + a.BrakeLocomotives)
	a.PctWagons = percent(a.BrakeWagons, a.MassWagons)
	a.PctTotal = percent(a.BrakeTotal, a.MassTotal)
	return a
}

// sum2 returns round2 of the sum of xs. xs is sorted in place.
func sum2(xs []float64) float64 {
	slices.Sort(xs)
	var total float64
	for _, x := range xs {
		total += x
	}
	return Round2(total)
}

// percent returns round2(100 * brake / mass), or 0 when mass is 0.
func percent(brake, mass float64) float64 {
	if mass <= 0 {
		return 0
	}
	return Round2(100 * brake / mass)
}

// Reorder returns the manifest rearranged into the order given by keys.
//
// The reorder is accepted only when keys names every vehicle exactly once
// and nothing else. Otherwise it returns domain.ErrReorderRejected and the
// input slice is left untouched.
func Reorder(vehicles []domain.Vehicle, keys []uuid.UUID) ([]domain.Vehicle, error) {
	if len(keys) != len(vehicles) {
		return nil, fmt.Errorf("%w: expected %d keys, got %d", domain.ErrReorderRejected, len(vehicles), len(keys))
	}

	byKey := make(map[uuid.UUID]domain.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byKey[v.Key] = v
	}
	if len(byKey) != len(vehicles) {
		return nil, fmt.Errorf("%w: manifest contains duplicate keys", domain.ErrReorderRejected)
	}

	out := make([]domain.Vehicle, 0, len(keys))
	seen := make(map[uuid.UUID]bool, len(keys))
	for _, k := range keys {
		v, ok := byKey[k]
		if !ok {
			return nil, fmt.Errorf("%w: unknown vehicle %s", domain.ErrReorderRejected, k)
		}
		if seen[k] {
			return nil, fmt.Errorf("%w: vehicle %s listed twice", domain.ErrReorderRejected, k)
		}
		seen[k] = true
		out = append(out, v)
	}
	return out, nil
}
