// Package timing derives arrival/departure deviations and dwell times from
// the planned and actual date/time strings recorded for a station visit.
//
// Times are "HH:MM" 24-hour strings and dates are "YYYY-MM-DD" strings; an
// empty string means "not recorded yet". Instants are built in local calendar
// semantics with no timezone conversion.
package timing

import (
	"math"
	"regexp"
	"time"

	"github.com/pkordes/erj-report/internal/domain"
)

var timeRE = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IsValidTime reports whether s is empty or a strict 24-hour "HH:MM" value.
// "24:00" and single-digit hours are rejected.
func IsValidTime(s string) bool {
	return s == "" || timeRE.MatchString(s)
}

// IsValidDate reports whether s is empty or a real "YYYY-MM-DD" calendar date.
func IsValidDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}

// Combine resolves a date and a wall-clock time into an instant.
// The row date wins; fallbackDate is used when the row date is empty.
// ok is false when no time is given, no date resolves, or either part is
// malformed.
func Combine(date, clock, fallbackDate string) (t time.Time, ok bool) {
	if clock == "" {
		return time.Time{}, false
	}
	d := date
	if d == "" {
		d = fallbackDate
	}
	if d == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(domain.DateLayout+" "+domain.TimeLayout, d+" "+clock, time.Local)
	if err != nil || !IsValidTime(clock) {
		return time.Time{}, false
	}
	return t, true
}

// minutesBetween returns round((to-from)/1min), or nil if either end is unknown.
func minutesBetween(from time.Time, fromOK bool, to time.Time, toOK bool) *int {
	if !fromOK || !toOK {
		return nil
	}
	m := int(math.Round(to.Sub(from).Minutes()))
	return &m
}

// Deviation returns the signed minute difference actual-planned for one
// event. It returns nil (unknown), never zero, when either instant is missing.
func Deviation(planned time.Time, plannedOK bool, actual time.Time, actualOK bool) *int {
	return minutesBetween(planned, plannedOK, actual, actualOK)
}

// Dwell returns the minutes between actual arrival and actual departure, or
// nil when either is missing.
func Dwell(arrival time.Time, arrivalOK bool, departure time.Time, departureOK bool) *int {
	return minutesBetween(arrival, arrivalOK, departure, departureOK)
}

// ComputeStation returns v with its three derived fields recalculated from
// the four date/time pairs. Any values already present are discarded.
func ComputeStation(v domain.StationVisit, fallbackDate string) domain.StationVisit {
	plannedArr, plannedArrOK := Combine(v.PlannedArrivalDate, v.PlannedArrivalTime, fallbackDate)
	actualArr, actualArrOK := Combine(v.ActualArrivalDate, v.ActualArrivalTime, fallbackDate)
	plannedDep, plannedDepOK := Combine(v.PlannedDepartureDate, v.PlannedDepartureTime, fallbackDate)
	actualDep, actualDepOK := Combine(v.ActualDepartureDate, v.ActualDepartureTime, fallbackDate)

	v.ArrivalDeviationMinutes = Deviation(plannedArr, plannedArrOK, actualArr, actualArrOK)
	v.DepartureDeviationMinutes = Deviation(plannedDep, plannedDepOK, actualDep, actualDepOK)
	v.DwellMinutes = Dwell(actualArr, actualArrOK, actualDep, actualDepOK)
	return v
}
