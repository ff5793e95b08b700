package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/manifest"
	"github.com/pkordes/erj-report/internal/numbering"
	"github.com/pkordes/erj-report/internal/timing"
)

// timingHeaders is the first row of the station-timing CSV.
var timingHeaders = []string{
	"station",
	"planned_arrival", "actual_arrival", "arrival_deviation", "arrival_status",
	"planned_departure", "actual_departure", "departure_deviation", "departure_status",
	"dwell", "delay_reason", "written_orders",
}

// manifestHeaders is the vehicle table header of the R-7 sheet.
var manifestHeaders = []string{
	"No.", "Class", "Vehicle number", "Country", "Operator", "Operator code", "Series",
	"Length [m]", "Payload [t]", "Empty mass [t]", "Brake mass [t]", "Brake type",
	"From", "To", "Notes",
}

const manifestSheet = "R-7"

// Export renders a report in the requested format.
//
//   - json: the full report document
//   - csv:  one row per station visit with deviations and their status
//   - xlsx: the R-7 vehicle manifest with a fresh analysis summary
func (s *ReportService) Export(ctx context.Context, number string, format domain.ExportFormat) (domain.Export, error) {
	const op = "service.ReportService.Export"

	r, err := s.Get(ctx, number)
	if err != nil {
		return domain.Export{}, err
	}

	var (
		body []byte
		name string
	)
	slug := numbering.Slug(r.Number)
	switch format {
	case domain.FormatJSON, "":
		format = domain.FormatJSON
		body, err = json.MarshalIndent(r, "", "  ")
		name = "report-" + slug + ".json"
	case domain.FormatCSV:
		body, err = renderTimingCSV(TimingRows(r))
		name = "stations-" + slug + ".csv"
	case domain.FormatXLSX:
		body, err = renderManifestXLSX(r, manifest.Analyze(r.Manifest))
		name = "r7-" + slug + ".xlsx"
	default:
		return domain.Export{}, domain.NewFieldError("format", "must be json, csv or xlsx")
	}
	if err != nil {
		return domain.Export{}, fmt.Errorf("%s: render %s: %w", op, format, err)
	}
	return domain.Export{Filename: name, ContentType: format.ContentType(), Body: body}, nil
}

// TimingRows flattens section E into export rows. Unknown minutes are empty
// cells with status "unknown"; they are never shown as 0.
func TimingRows(r domain.Report) []domain.TimingRow {
	rows := make([]domain.TimingRow, 0, len(r.Stations))
	for _, v := range r.Stations {
		rows = append(rows, domain.TimingRow{
			Station:            v.Station,
			PlannedArrival:     joinDateTime(v.PlannedArrivalDate, v.PlannedArrivalTime),
			ActualArrival:      joinDateTime(v.ActualArrivalDate, v.ActualArrivalTime),
			ArrivalDeviation:   timing.FormatMinutes(v.ArrivalDeviationMinutes),
			ArrivalStatus:      string(timing.Classify(v.ArrivalDeviationMinutes)),
			PlannedDeparture:   joinDateTime(v.PlannedDepartureDate, v.PlannedDepartureTime),
			ActualDeparture:    joinDateTime(v.ActualDepartureDate, v.ActualDepartureTime),
			DepartureDeviation: timing.FormatMinutes(v.DepartureDeviationMinutes),
			DepartureStatus:    string(timing.Classify(v.DepartureDeviationMinutes)),
			Dwell:              timing.FormatMinutes(v.DwellMinutes),
			DelayReason:        v.DelayReason,
			WrittenOrders:      v.WrittenOrders,
		})
	}
	return rows
}

func joinDateTime(date, clock string) string {
	return strings.TrimSpace(date + " " + clock)
}

func renderTimingCSV(rows []domain.TimingRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error; w.Error reports.
	w.Write(timingHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write([]string{
			r.Station,
			r.PlannedArrival, r.ActualArrival, r.ArrivalDeviation, r.ArrivalStatus,
			r.PlannedDeparture, r.ActualDeparture, r.DepartureDeviation, r.DepartureStatus,
			r.Dwell, r.DelayReason, r.WrittenOrders,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderManifestXLSX writes the R-7 sheet: a header block, one row per
// vehicle in train order, and the analysis summary below the table.
func renderManifestXLSX(r domain.Report, a domain.Analysis) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", manifestSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#3b82f6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	meta := [][]any{
		{"R-7", r.Number},
		{"Train", r.General.TrainNumber},
		{"Date", r.General.Date},
		{"From", r.ManifestMeta.From},
		{"To", r.ManifestMeta.To},
		{"Driver", r.ManifestMeta.Driver},
		{"Conductor", r.ManifestMeta.Conductor},
	}
	row := 1
	for _, m := range meta {
		if err := setRow(f, row, m); err != nil {
			return nil, err
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellStyle(manifestSheet, cell, cell, bold); err != nil {
			return nil, err
		}
		row++
	}

	row++
	headerRow := row
	hdr := make([]any, len(manifestHeaders))
	for i, h := range manifestHeaders {
		hdr[i] = h
	}
	if err := setRow(f, row, hdr); err != nil {
		return nil, err
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(manifestHeaders), headerRow)
	if err := f.SetCellStyle(manifestSheet, first, last, header); err != nil {
		return nil, err
	}
	row++

	for i, v := range r.Manifest {
		if err := setRow(f, row, []any{
			i + 1, string(v.Class), v.ID, v.Country, v.Operator, v.OperatorCode, v.Series,
			v.LengthMeters, v.PayloadTons, v.EmptyMassTons, v.BrakeMassTons, v.BrakeType,
			v.OriginStation, v.DestinationStation, v.Notes,
		}); err != nil {
			return nil, err
		}
		row++
	}

	row++
	summary := [][]any{
		{"Summary"},
		{"Locomotives", a.LocomotiveCount},
		{"Wagons", a.WagonCount},
		{"Length [m]", a.Length},
		{"Mass of wagons [t]", a.MassWagons},
		{"Mass of locomotives [t]", a.MassLocomotives},
		{"Total mass [t]", a.MassTotal},
		{"Brake mass of wagons [t]", a.BrakeWagons},
		{"Brake mass of locomotives [t]", a.BrakeLocomotives},
		{"Total brake mass [t]", a.BrakeTotal},
		{"Braked weight of wagons [%]", a.PctWagons},
		{"Braked weight of train [%]", a.PctTotal},
	}
	for _, s := range summary {
		if err := setRow(f, row, s); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetColWidth(manifestSheet, "A", "A", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(manifestSheet, "B", "O", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(manifestSheet, cell, &values)
}
