// Package numbering stamps report numbers from a counter value and a date.
package numbering

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/erj-report/internal/domain"
)

// Trip formats a trip-report number as DDD/DD/MM/YY: the counter padded to
// three digits, then day, month and two-digit year.
func Trip(counter int64, date time.Time) string {
	return fmt.Sprintf("%03d/%02d/%02d/%02d", counter, date.Day(), int(date.Month()), date.Year()%100)
}

// Manifest formats an R-7 manifest number as R7-DDD-DDMMYY.
func Manifest(counter int64, date time.Time) string {
	return fmt.Sprintf("R7-%03d-%02d%02d%02d", counter, date.Day(), int(date.Month()), date.Year()%100)
}

// For formats a number for the given report kind.
func For(kind domain.ReportKind, counter int64, date time.Time) string {
	if kind == domain.KindManifest {
		return Manifest(counter, date)
	}
	return Trip(counter, date)
}

// Slug makes a report number safe for URL paths and file names.
// "006/02/01/24" becomes "006-02-01-24"; R7 numbers are already safe.
func Slug(number string) string {
	return strings.ReplaceAll(number, "/", "-")
}

// FromSlug reverses Slug. Numbers starting with "R7-" are returned as-is.
func FromSlug(slug string) string {
	if strings.HasPrefix(slug, "R7-") {
		return slug
	}
	return strings.ReplaceAll(slug, "-", "/")
}
