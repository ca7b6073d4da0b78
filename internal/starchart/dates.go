package starchart

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the ISO calendar-day layout used on the wire and in cache keys.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO day as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as an ISO day in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// AddDays shifts an ISO day by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the whole days from a to b (negative when b precedes a).
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDate(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDate(b)
	if err != nil {
		return 0, err
	}
	return int(math.Round(tb.Sub(ta).Hours() / 24)), nil
}

// PrettyDate renders an ISO day as "April 20, 1990". Invalid input is returned unchanged.
func PrettyDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}

// DateRange is the inclusive span the date slider covers.
type DateRange struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// DefaultRange spans 1980-01-01 through 2000-12-31.
var DefaultRange = DateRange{Start: "1980-01-01", End: "2000-12-31"}

// DefaultInitialDate is the day selected when the panel mounts.
const DefaultInitialDate = "1990-04-20"

// Validate checks both ends parse and Start does not follow End.
func (r DateRange) Validate() error {
	days, err := DaysBetween(r.Start, r.End)
	if err != nil {
		return fmt.Errorf("date range: %w", err)
	}
	if days < 0 {
		return fmt.Errorf("date range: start %s is after end %s", r.Start, r.End)
	}
	return nil
}

// TotalDays is the largest valid slider offset.
func (r DateRange) TotalDays() int {
	days, err := DaysBetween(r.Start, r.End)
	if err != nil || days < 0 {
		return 0
	}
	return days
}

// DateAt returns the day at a clamped offset from Start.
func (r DateRange) DateAt(offset int) string {
	d, err := AddDays(r.Start, Clamp(offset, 0, r.TotalDays()))
	if err != nil {
		return r.Start
	}
	return d
}

// OffsetOf returns the clamped slider offset for date.
func (r DateRange) OffsetOf(date string) int {
	days, err := DaysBetween(r.Start, date)
	if err != nil {
		return 0
	}
	return Clamp(days, 0, r.TotalDays())
}
