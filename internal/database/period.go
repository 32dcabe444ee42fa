package database

import (
	"strings"
	"time"
)

// GetToday returns today's date as YYYY-MM-DD.
func GetToday() string {
	return time.Now().Format("2006-01-02")
}

// FormatPeriodDisplay formats a period_id (a YYYY-MM-DD run date) for
// human-readable display, e.g. "Feb 06, 2026". Anything that does not
// parse is shown as-is.
func FormatPeriodDisplay(periodID string) string {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(periodID))
	if err != nil {
		return periodID
	}
	return d.Format("Jan 02, 2006")
}
