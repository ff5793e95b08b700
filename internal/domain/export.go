package domain

// ExportFormat selects the representation produced by a report export.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Export is a rendered report ready to be written to a client or a file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TimingRow is a single row of the station-timing export: one row per
// station visit, flattened to strings. Minutes that are unknown are empty
// strings and their status is "unknown".
type TimingRow struct {
	Station            string
	PlannedArrival     string // "2006-01-02 15:04", date part omitted when not recorded
	ActualArrival      string
	ArrivalDeviation   string
	ArrivalStatus      string
	PlannedDeparture   string
	ActualDeparture    string
	DepartureDeviation string
	DepartureStatus    string
	Dwell              string
	DelayReason        string
	WrittenOrders      string
}
