package domain

import "github.com/google/uuid"

// DateLayout is the calendar date format used throughout reports ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// TimeLayout is the 24-hour wall clock format used for planned/actual times.
const TimeLayout = "15:04"

// General is section A: the header of a trip report.
// Date doubles as the fallback date for station times entered without a date.
type General struct {
	Category    string `json:"category"`
	Traction    string `json:"traction"`
	TrainNumber string `json:"trainNumber"`
	Route       string `json:"route"`
	Date        string `json:"date"`
}

// CrewMember is an entry of section B (traction crew).
type CrewMember struct {
	Key        uuid.UUID `json:"key"`
	Name       string    `json:"name"`
	EmployeeID string    `json:"employeeId"`
	Depot      string    `json:"depot"`
	Locomotive string    `json:"locomotive"`
	From       string    `json:"from"`
	To         string    `json:"to"`
}

// ConductorMember is an entry of section C (conductor crew).
type ConductorMember struct {
	Key        uuid.UUID `json:"key"`
	Name       string    `json:"name"`
	EmployeeID string    `json:"employeeId"`
	Depot      string    `json:"depot"`
	Role       string    `json:"role"`
	From       string    `json:"from"`
	To         string    `json:"to"`
}

// Order is an entry of section D (dispatch orders).
type Order struct {
	Key    uuid.UUID `json:"key"`
	Number string    `json:"number"`
	Time   string    `json:"time"`
	Text   string    `json:"text"`
	Source string    `json:"source"`
}

// StationVisit is an entry of section E (station-by-station timing).
//
// The deviation and dwell fields are derived from the date/time pairs on
// every write. A nil value means "unknown" and is distinct from zero.
type StationVisit struct {
	Key     uuid.UUID `json:"key"`
	Station string    `json:"station"`

	PlannedArrivalDate   string `json:"plannedArrivalDate"`
	PlannedArrivalTime   string `json:"plannedArrivalTime"`
	ActualArrivalDate    string `json:"actualArrivalDate"`
	ActualArrivalTime    string `json:"actualArrivalTime"`
	PlannedDepartureDate string `json:"plannedDepartureDate"`
	PlannedDepartureTime string `json:"plannedDepartureTime"`
	ActualDepartureDate  string `json:"actualDepartureDate"`
	ActualDepartureTime  string `json:"actualDepartureTime"`

	ArrivalDeviationMinutes   *int `json:"arrivalDeviationMinutes"`
	DepartureDeviationMinutes *int `json:"departureDeviationMinutes"`
	DwellMinutes              *int `json:"dwellMinutes"`

	DelayReason   string `json:"delayReason"`
	WrittenOrders string `json:"writtenOrders"`
}

// Control is an entry of section F (train inspections).
type Control struct {
	Key         uuid.UUID `json:"key"`
	Inspector   string    `json:"inspector"`
	EmployeeID  string    `json:"employeeId"`
	Description string    `json:"description"`
	Notes       string    `json:"notes"`
}

// Note is an entry of section G (free-text remarks).
type Note struct {
	Key  uuid.UUID `json:"key"`
	Text string    `json:"text"`
}

// VehicleClass splits a manifest into traction and hauled stock.
type VehicleClass string

const (
	ClassLocomotive VehicleClass = "locomotive"
	ClassWagon      VehicleClass = "wagon"
)

// Vehicle is one entry of the R-7 manifest.
// ID is the vehicle's own number (EVN); Key is the synthetic identity used
// for edit, delete and reorder addressing.
type Vehicle struct {
	Key                uuid.UUID    `json:"key"`
	Class              VehicleClass `json:"class"`
	ID                 string       `json:"id"`
	Country            string       `json:"country"`
	Operator           string       `json:"operator"`
	OperatorCode       string       `json:"operatorCode"`
	Series             string       `json:"series"`
	LengthMeters       float64      `json:"lengthMeters"`
	PayloadTons        float64      `json:"payloadTons"`
	EmptyMassTons      float64      `json:"emptyMassTons"`
	BrakeMassTons      float64      `json:"brakeMassTons"`
	BrakeType          string       `json:"brakeType"`
	OriginStation      string       `json:"originStation"`
	DestinationStation string       `json:"destinationStation"`
	Notes              string       `json:"notes"`
}
