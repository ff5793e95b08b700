// Package domain contains the core data types for the eRJ report backend.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (timing, manifest, section, repo, service,
// handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportKind distinguishes a full trip report from a report opened directly
// as an R-7 vehicle manifest. Both share the same document shape; only the
// number format differs.
type ReportKind string

const (
	KindTrip     ReportKind = "trip"
	KindManifest ReportKind = "manifest"
)

// Valid reports whether k is one of the known report kinds.
func (k ReportKind) Valid() bool {
	return k == KindTrip || k == KindManifest
}

// Person identifies a crew member by display name and employee number.
type Person struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// TakeOver records that another driver took over an existing report.
type TakeOver struct {
	Name string    `json:"name"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
}

// Report is the trip-report aggregate. It is stored and exported as a single
// document; every mutation rewrites the whole document.
type Report struct {
	Number        string     `json:"number"`
	Kind          ReportKind `json:"kind"`
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedBy     Person     `json:"createdBy"`
	CurrentDriver Person     `json:"currentDriver"`
	TakenBy       *TakeOver  `json:"takenBy,omitempty"`
	LastEditedAt  *time.Time `json:"lastEditedAt,omitempty"`

	General    General           `json:"sectionA"`
	Traction   []CrewMember      `json:"sectionB"`
	Conductors []ConductorMember `json:"sectionC"`
	Orders     []Order           `json:"sectionD"`
	Stations   []StationVisit    `json:"sectionE"`
	Controls   []Control         `json:"sectionF"`
	Notes      []Note            `json:"sectionG"`

	Manifest     []Vehicle    `json:"vehicleManifest"`
	ManifestMeta ManifestMeta `json:"manifestMeta"`
	LastAnalysis *Analysis    `json:"lastAnalysis,omitempty"`
}

// NewReport returns an empty report with non-nil section slices so that
// JSON output always carries arrays rather than nulls.
func NewReport(number string, kind ReportKind, creator Person, now time.Time) Report {
	return Report{
		Number:        number,
		Kind:          kind,
		CreatedAt:     now,
		CreatedBy:     creator,
		CurrentDriver: creator,
		General:       General{Date: now.Format(DateLayout)},
		Traction:      []CrewMember{},
		Conductors:    []ConductorMember{},
		Orders:        []Order{},
		Stations:      []StationVisit{},
		Controls:      []Control{},
		Notes:         []Note{},
		Manifest:      []Vehicle{},
	}
}

// EnsureKeys assigns a fresh key to every entry that lacks one and replaces
// nil slices with empty ones. Used for documents that arrive from outside
// (JSON import).
func (r *Report) EnsureKeys() {
	if r.Traction == nil {
		r.Traction = []CrewMember{}
	}
	if r.Conductors == nil {
		r.Conductors = []ConductorMember{}
	}
	if r.Orders == nil {
		r.Orders = []Order{}
	}
	if r.Stations == nil {
		r.Stations = []StationVisit{}
	}
	if r.Controls == nil {
		r.Controls = []Control{}
	}
	if r.Notes == nil {
		r.Notes = []Note{}
	}
	if r.Manifest == nil {
		r.Manifest = []Vehicle{}
	}
	for i := range r.Traction {
		fillKey(&r.Traction[i].Key)
	}
	for i := range r.Conductors {
		fillKey(&r.Conductors[i].Key)
	}
	for i := range r.Orders {
		fillKey(&r.Orders[i].Key)
	}
	for i := range r.Stations {
		fillKey(&r.Stations[i].Key)
	}
	for i := range r.Controls {
		fillKey(&r.Controls[i].Key)
	}
	for i := range r.Notes {
		fillKey(&r.Notes[i].Key)
	}
	for i := range r.Manifest {
		fillKey(&r.Manifest[i].Key)
	}
}

func fillKey(k *uuid.UUID) {
	if *k == uuid.Nil {
		*k = uuid.New()
	}
}

// ManifestMeta carries the R-7 header fields that are not part of section A.
type ManifestMeta struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Driver    string `json:"driver"`
	Conductor string `json:"conductor"`
}

// Analysis is a derived snapshot of the manifest's length, mass and braking
// figures. It is recomputed on request and discarded on any manifest change.
type Analysis struct {
	Length           float64   `json:"length"`
	MassWagons       float64   `json:"massWagons"`
	MassLocomotives  float64   `json:"massLocomotives"`
	MassTotal        float64   `json:"massTotal"`
	BrakeWagons      float64   `json:"brakeWagons"`
	BrakeLocomotives float64   `json:"brakeLocomotives"`
	BrakeTotal       float64   `json:"brakeTotal"`
	PctWagons        float64   `json:"pctWagons"`
	PctTotal         float64   `json:"pctTotal"`
	WagonCount       int       `json:"wagonCount"`
	LocomotiveCount  int       `json:"locomotiveCount"`
	ComputedAt       time.Time `json:"computedAt"`
}
