package utils

import (
	"log"
	"time"
)

// ISODateFormat is the calendar date format used across the API and the
// earnings/expenses tables (ISO 8601, date only).
const ISODateFormat = "2006-01-02"

// ParseISODate parses an ISO calendar date string.
// Logs an error and returns zero time if parsing fails.
func ParseISODate(dateStr string) time.Time {
	t, err := time.Parse(ISODateFormat, dateStr)
	if err != nil {
		log.Printf("Error parsing date '%s' with format '%s': %v. Returning zero time.", dateStr, ISODateFormat, err)
		return time.Time{} // Return zero time on error
	}
	return t
}

// FormatISODate renders a time as an ISO calendar date string.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateFormat)
}
