package model

import (
	"errors"
	"time"
)

// DateLayout is the wire format for stay dates.  Only whole calendar
// days are meaningful; times of day are always truncated to midnight UTC.
const DateLayout = "2006-01-02"

// MaxSearchDays bounds the span of an availability search.
const MaxSearchDays = 30

// ErrInvalidRange indicates a malformed or ordering-violating date range
// (start >= end, a past start date, or a span beyond the allowed limit).
var ErrInvalidRange = errors.New("invalid date range")

// DateRange is a half-open stay interval [Start, End).  The night of
// End is not part of the stay, so [2024-06-01, 2024-06-04) covers three
// nights.  Both endpoints are calendar dates at midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange builds a DateRange from two YYYY-MM-DD strings.  It
// returns ErrInvalidRange when either date does not parse or the range
// is not strictly ordered.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, ErrInvalidRange
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, ErrInvalidRange
	}
	dr := DateRange{Start: s.UTC(), End: e.UTC()}
	if !dr.Start.Before(dr.End) {
		return DateRange{}, ErrInvalidRange
	}
	return dr, nil
}

// Nights returns the whole-day count of the range (end minus start in days).
func (dr DateRange) Nights() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night:
// start1 < end2 && start2 < end1.  Back-to-back stays (one ending the day
// the other starts) do not overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

// ValidateSearch enforces the extra constraints that apply to
// availability searches and bookings: the start date must be today or
// later and the span must not exceed MaxSearchDays.  The ordering
// invariant is already guaranteed by ParseDateRange; callers that build
// a DateRange by hand get it re-checked here.
func (dr DateRange) ValidateSearch(now time.Time) error {
	if !dr.Start.Before(dr.End) {
		return ErrInvalidRange
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if dr.Start.Before(today) {
		return ErrInvalidRange
	}
	if dr.Nights() > MaxSearchDays {
		return ErrInvalidRange
	}
	return nil
}
