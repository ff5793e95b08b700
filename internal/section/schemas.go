package section

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/manifest"
	"github.com/pkordes/erj-report/internal/timing"
)

// Traction is section B.
var Traction = Schema[domain.CrewMember]{
	name:  "traction",
	items: func(r *domain.Report) *[]domain.CrewMember { return &r.Traction },
	key:   func(v *domain.CrewMember) *uuid.UUID { return &v.Key },
	validate: func(v domain.CrewMember) error {
		return requireAll(field{"name", v.Name}, field{"employeeId", v.EmployeeID})
	},
}

// Conductors is section C.
var Conductors = Schema[domain.ConductorMember]{
	name:  "conductors",
	items: func(r *domain.Report) *[]domain.ConductorMember { return &r.Conductors },
	key:   func(v *domain.ConductorMember) *uuid.UUID { return &v.Key },
	validate: func(v domain.ConductorMember) error {
		return requireAll(field{"name", v.Name}, field{"employeeId", v.EmployeeID})
	},
}

// Orders is section D.
var Orders = Schema[domain.Order]{
	name:  "orders",
	items: func(r *domain.Report) *[]domain.Order { return &r.Orders },
	key:   func(v *domain.Order) *uuid.UUID { return &v.Key },
	validate: func(v domain.Order) error {
		if err := requireAll(field{"text", v.Text}); err != nil {
			return err
		}
		return validTimes(field{"time", v.Time})
	},
}

// Stations is section E. Deviations and dwell are recomputed on every write
// using section A's date as the fallback date.
var Stations = Schema[domain.StationVisit]{
	name:     "stations",
	items:    func(r *domain.Report) *[]domain.StationVisit { return &r.Stations },
	key:      func(v *domain.StationVisit) *uuid.UUID { return &v.Key },
	validate: validateStation,
	prepare: func(r *domain.Report, v domain.StationVisit) domain.StationVisit {
		return timing.ComputeStation(v, r.General.Date)
	},
}

// Controls is section F.
var Controls = Schema[domain.Control]{
	name:  "controls",
	items: func(r *domain.Report) *[]domain.Control { return &r.Controls },
	key:   func(v *domain.Control) *uuid.UUID { return &v.Key },
	validate: func(v domain.Control) error {
		return requireAll(field{"inspector", v.Inspector})
	},
}

// Notes is section G.
var Notes = Schema[domain.Note]{
	name:  "notes",
	items: func(r *domain.Report) *[]domain.Note { return &r.Notes },
	key:   func(v *domain.Note) *uuid.UUID { return &v.Key },
	validate: func(v domain.Note) error {
		return requireAll(field{"text", v.Text})
	},
}

// Vehicles is the R-7 manifest. Numeric fields are rounded to two decimals
// on every write.
var Vehicles = Schema[domain.Vehicle]{
	name:     "vehicles",
	items:    func(r *domain.Report) *[]domain.Vehicle { return &r.Manifest },
	key:      func(v *domain.Vehicle) *uuid.UUID { return &v.Key },
	validate: manifest.Validate,
	prepare: func(_ *domain.Report, v domain.Vehicle) domain.Vehicle {
		return manifest.Normalize(v)
	},
}

var byName = map[string]Section{
	"traction":   Traction,
	"b":          Traction,
	"conductors": Conductors,
	"c":          Conductors,
	"orders":     Orders,
	"d":          Orders,
	"stations":   Stations,
	"e":          Stations,
	"controls":   Controls,
	"f":          Controls,
	"notes":      Notes,
	"g":          Notes,
}

// Lookup returns the section B–G collection for a name ("stations") or a
// letter ("e"), case-insensitively.
func Lookup(name string) (Section, bool) {
	s, ok := byName[strings.ToLower(name)]
	return s, ok
}

// Categories and traction codes accepted in section A. The empty string
// means "not filled in yet".
var (
	categories    = []string{"", "EX", "MP", "RJ", "OS", "PW"}
	tractionCodes = []string{"", "E", "S"}
)

// ValidateGeneral checks section A.
func ValidateGeneral(g domain.General) error {
	if !slices.Contains(categories, g.Category) {
		return domain.NewFieldError("category", "must be one of EX, MP, RJ, OS, PW")
	}
	if !slices.Contains(tractionCodes, g.Traction) {
		return domain.NewFieldError("traction", "must be E or S")
	}
	if !timing.IsValidDate(g.Date) {
		return domain.NewFieldError("date", "must be a YYYY-MM-DD date")
	}
	return nil
}

// RecomputeStations refreshes the derived fields of every station visit.
// Called whenever section A's date, the fallback date, changes.
func RecomputeStations(r *domain.Report) {
	for i, v := range r.Stations {
		r.Stations[i] = timing.ComputeStation(v, r.General.Date)
	}
}

// ValidateReport runs every collection validator over a whole report, as
// needed when a document arrives through import.
func ValidateReport(r domain.Report) error {
	if err := ValidateGeneral(r.General); err != nil {
		return err
	}
	if err := validateEach(Traction, r.Traction); err != nil {
		return err
	}
	if err := validateEach(Conductors, r.Conductors); err != nil {
		return err
	}
	if err := validateEach(Orders, r.Orders); err != nil {
		return err
	}
	if err := validateEach(Stations, r.Stations); err != nil {
		return err
	}
	if err := validateEach(Controls, r.Controls); err != nil {
		return err
	}
	if err := validateEach(Notes, r.Notes); err != nil {
		return err
	}
	return validateEach(Vehicles, r.Manifest)
}

func validateEach[T any](s Schema[T], items []T) error {
	for _, v := range items {
		if err := s.validate(v); err != nil {
			return err
		}
	}
	return nil
}

func validateStation(v domain.StationVisit) error {
	if err := requireAll(field{"station", v.Station}); err != nil {
		return err
	}
	if err := validTimes(
		field{"plannedArrivalTime", v.PlannedArrivalTime},
		field{"actualArrivalTime", v.ActualArrivalTime},
		field{"plannedDepartureTime", v.PlannedDepartureTime},
		field{"actualDepartureTime", v.ActualDepartureTime},
	); err != nil {
		return err
	}
	for _, f := range []field{
		{"plannedArrivalDate", v.PlannedArrivalDate},
		{"actualArrivalDate", v.ActualArrivalDate},
		{"plannedDepartureDate", v.PlannedDepartureDate},
		{"actualDepartureDate", v.ActualDepartureDate},
	} {
		if !timing.IsValidDate(f.value) {
			return domain.NewFieldError(f.name, "must be a YYYY-MM-DD date")
		}
	}
	return nil
}

type field struct {
	name  string
	value string
}

func requireAll(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return domain.NewFieldError(f.name, "is required")
		}
	}
	return nil
}

func validTimes(fields ...field) error {
	for _, f := range fields {
		if !timing.IsValidTime(f.value) {
			return domain.NewFieldError(f.name, "must be a 24-hour HH:MM time")
		}
	}
	return nil
}
