package section_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/section"
)

func newReport() domain.Report {
	now := time.Date(2024, 5, 1, 6, 0, 0, 0, time.Local)
	return domain.NewReport("001/01/05/24", domain.KindTrip, domain.Person{Name: "Jan Kowalski", ID: "12345"}, now)
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var fe *domain.FieldError
	require.ErrorAs(t, err, &fe)
	return fe.Field
}

// ---- Add -------------------------------------------------------------------

func TestAdd_AssignsKeyAndAppends(t *testing.T) {
	r := newReport()

	got, err := section.Traction.Add(&r, domain.CrewMember{Name: "Jan", EmployeeID: "1", Key: uuid.Nil})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.Key)
	require.Len(t, r.Traction, 1)
	assert.Equal(t, got, r.Traction[0])
}

func TestAdd_IgnoresClientKey(t *testing.T) {
	r := newReport()
	clientKey := uuid.New()

	got, err := section.Notes.Add(&r, domain.Note{Key: clientKey, Text: "ok"})

	require.NoError(t, err)
	assert.NotEqual(t, clientKey, got.Key)
}

func TestAdd_RejectedLeavesReportUnchanged(t *testing.T) {
	r := newReport()
	before := r

	_, err := section.Conductors.Add(&r, domain.ConductorMember{Name: "Anna"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "employeeId", fieldOf(t, err))
	assert.Equal(t, before, r)
}

func TestAdd_BlankIsMissing(t *testing.T) {
	r := newReport()

	_, err := section.Notes.Add(&r, domain.Note{Text: "   "})

	assert.Equal(t, "text", fieldOf(t, err))
}

// ---- Validators ------------------------------------------------------------

func TestOrders_Validation(t *testing.T) {
	r := newReport()

	_, err := section.Orders.Add(&r, domain.Order{Time: "10:00"})
	assert.Equal(t, "text", fieldOf(t, err))

	_, err = section.Orders.Add(&r, domain.Order{Text: "S1 order", Time: "25:00"})
	assert.Equal(t, "time", fieldOf(t, err))

	_, err = section.Orders.Add(&r, domain.Order{Text: "S1 order"})
	assert.NoError(t, err, "time is optional")
}

func TestStations_Validation(t *testing.T) {
	r := newReport()

	_, err := section.Stations.Add(&r, domain.StationVisit{PlannedArrivalTime: "08:00"})
	assert.Equal(t, "station", fieldOf(t, err))

	_, err = section.Stations.Add(&r, domain.StationVisit{Station: "Kutno", ActualDepartureTime: "8:05"})
	assert.Equal(t, "actualDepartureTime", fieldOf(t, err))

	_, err = section.Stations.Add(&r, domain.StationVisit{Station: "Kutno", PlannedArrivalDate: "2024-13-01"})
	assert.Equal(t, "plannedArrivalDate", fieldOf(t, err))

	assert.Empty(t, r.Stations)
}

func TestControls_Validation(t *testing.T) {
	r := newReport()

	_, err := section.Controls.Add(&r, domain.Control{Description: "ticket check"})

	assert.Equal(t, "inspector", fieldOf(t, err))
}

func TestStations_DerivesMinutesFromSectionADate(t *testing.T) {
	r := newReport()

	got, err := section.Stations.Add(&r, domain.StationVisit{
		Station:              "Kutno",
		PlannedArrivalTime:   "08:00",
		ActualArrivalTime:    "08:07",
		PlannedDepartureTime: "08:10",
		ActualDepartureTime:  "08:19",
	})

	require.NoError(t, err)
	require.NotNil(t, got.ArrivalDeviationMinutes)
	assert.Equal(t, 7, *got.ArrivalDeviationMinutes)
	require.NotNil(t, got.DwellMinutes)
	assert.Equal(t, 12, *got.DwellMinutes)
}

func TestVehicles_NormalizesOnWrite(t *testing.T) {
	r := newReport()

	got, err := section.Vehicles.Add(&r, domain.Vehicle{Class: domain.ClassWagon, LengthMeters: 14.456})

	require.NoError(t, err)
	assert.Equal(t, 14.46, got.LengthMeters)
}

// ---- Replace / Remove ------------------------------------------------------

func TestReplace_KeepsKeyAndPosition(t *testing.T) {
	r := newReport()
	a, _ := section.Notes.Add(&r, domain.Note{Text: "a"})
	b, _ := section.Notes.Add(&r, domain.Note{Text: "b"})

	got, err := section.Notes.Replace(&r, a.Key, domain.Note{Key: b.Key, Text: "a2"})

	require.NoError(t, err)
	assert.Equal(t, a.Key, got.Key)
	assert.Equal(t, []domain.Note{{Key: a.Key, Text: "a2"}, b}, r.Notes)
}

func TestReplace_UnknownKey(t *testing.T) {
	r := newReport()

	_, err := section.Notes.Replace(&r, uuid.New(), domain.Note{Text: "x"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplace_InvalidLeavesEntry(t *testing.T) {
	r := newReport()
	a, _ := section.Notes.Add(&r, domain.Note{Text: "a"})

	_, err := section.Notes.Replace(&r, a.Key, domain.Note{})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []domain.Note{a}, r.Notes)
}

func TestRemove(t *testing.T) {
	r := newReport()
	a, _ := section.Notes.Add(&r, domain.Note{Text: "a"})
	b, _ := section.Notes.Add(&r, domain.Note{Text: "b"})
	c, _ := section.Notes.Add(&r, domain.Note{Text: "c"})

	require.NoError(t, section.Notes.Remove(&r, b.Key))

	assert.Equal(t, []domain.Note{a, c}, r.Notes)
	assert.ErrorIs(t, section.Notes.Remove(&r, b.Key), domain.ErrNotFound)
}

// ---- JSON / Lookup ---------------------------------------------------------

func TestLookup(t *testing.T) {
	for _, name := range []string{"stations", "E", "e", "Stations"} {
		s, ok := section.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "stations", s.Name())
	}

	_, ok := section.Lookup("vehicles")
	assert.False(t, ok, "the manifest has its own endpoints")
	_, ok = section.Lookup("a")
	assert.False(t, ok)
}

func TestAddJSON(t *testing.T) {
	r := newReport()
	s, _ := section.Lookup("d")

	got, err := s.AddJSON(&r, []byte(`{"number":"12","time":"10:15","text":"proceed on sight","source":"radio"}`))

	require.NoError(t, err)
	o, ok := got.(domain.Order)
	require.True(t, ok)
	assert.Equal(t, "proceed on sight", o.Text)
	assert.Len(t, r.Orders, 1)
}

func TestAddJSON_Malformed(t *testing.T) {
	r := newReport()
	s, _ := section.Lookup("notes")

	_, err := s.AddJSON(&r, []byte(`{"text":`))

	assert.Equal(t, "body", fieldOf(t, err))
}

func TestAddJSON_UnknownField(t *testing.T) {
	r := newReport()
	s, _ := section.Lookup("notes")

	_, err := s.AddJSON(&r, []byte(`{"text":"x","colour":"red"}`))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReplaceJSON(t *testing.T) {
	r := newReport()
	a, _ := section.Controls.Add(&r, domain.Control{Inspector: "Nowak"})
	s, _ := section.Lookup("f")

	got, err := s.ReplaceJSON(&r, a.Key, []byte(`{"inspector":"Nowak","description":"brake test"}`))

	require.NoError(t, err)
	assert.Equal(t, "brake test", got.(domain.Control).Description)
}

// ---- Section A -------------------------------------------------------------

func TestValidateGeneral(t *testing.T) {
	assert.NoError(t, section.ValidateGeneral(domain.General{}))
	assert.NoError(t, section.ValidateGeneral(domain.General{Category: "EX", Traction: "E", Date: "2024-05-01"}))

	assert.Equal(t, "category", fieldOf(t, section.ValidateGeneral(domain.General{Category: "TLK"})))
	assert.Equal(t, "traction", fieldOf(t, section.ValidateGeneral(domain.General{Traction: "D"})))
	assert.Equal(t, "date", fieldOf(t, section.ValidateGeneral(domain.General{Date: "01.05.2024"})))
}

func TestRecomputeStations(t *testing.T) {
	r := newReport()
	r.General.Date = ""
	_, err := section.Stations.Add(&r, domain.StationVisit{Station: "Kutno", PlannedArrivalTime: "08:00", ActualArrivalTime: "08:03"})
	require.NoError(t, err)
	require.Nil(t, r.Stations[0].ArrivalDeviationMinutes, "no date resolves yet")

	r.General.Date = "2024-05-01"
	section.RecomputeStations(&r)

	require.NotNil(t, r.Stations[0].ArrivalDeviationMinutes)
	assert.Equal(t, 3, *r.Stations[0].ArrivalDeviationMinutes)
}

func TestValidateReport(t *testing.T) {
	r := newReport()
	assert.NoError(t, section.ValidateReport(r))

	r.Manifest = []domain.Vehicle{{Class: "tender"}}
	assert.Equal(t, "class", fieldOf(t, section.ValidateReport(r)))
}
