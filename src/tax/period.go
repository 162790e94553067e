package tax

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/drivefinance/backend/src/utils"
)

// ErrInvalidPeriod marks a malformed or inverted period request.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a resolved, inclusive calendar window.
type Period struct {
	Start time.Time
	End   time.Time
}

// StartDate returns the period start as an ISO calendar date.
func (p Period) StartDate() string { return utils.FormatISODate(p.Start) }

// EndDate returns the period end as an ISO calendar date.
func (p Period) EndDate() string { return utils.FormatISODate(p.End) }

// Days returns the number of elapsed days in the period, with a floor of 1
// so downstream projections never divide by zero.
func (p Period) Days() int {
	days := int(p.End.Sub(p.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// ResolvePeriod turns a named period or explicit ISO bounds into concrete
// dates. Explicit bounds win over the label; a missing start defaults by
// label ("month": first of the current month, "quarter": first day of the
// current calendar quarter, "year" or empty: January 1) and a missing end
// defaults to today. Inverted bounds are rejected.
func ResolvePeriod(label, startStr, endStr string, now time.Time) (Period, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var start time.Time
	switch label {
	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "quarter":
		quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
		start = time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, time.UTC)
	case "year", "":
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return Period{}, fmt.Errorf("%w: unknown period %q", ErrInvalidPeriod, label)
	}
	end := today

	if startStr != "" {
		parsed, err := time.Parse(utils.ISODateFormat, startStr)
		if err != nil {
			return Period{}, fmt.Errorf("%w: start date %q is not a valid ISO date", ErrInvalidPeriod, startStr)
		}
		start = parsed
	}
	if endStr != "" {
		parsed, err := time.Parse(utils.ISODateFormat, endStr)
		if err != nil {
			return Period{}, fmt.Errorf("%w: end date %q is not a valid ISO date", ErrInvalidPeriod, endStr)
		}
		end = parsed
	}

	if end.Before(start) {
		return Period{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, utils.FormatISODate(start), utils.FormatISODate(end))
	}

	return Period{Start: start, End: end}, nil
}
