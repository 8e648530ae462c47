package analytics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var calendarLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var (
	isoWeekRe = regexp.MustCompile(`^(\d{4})-W(\d{2})(?:-([1-7]))?$`)
	quarterRe = regexp.MustCompile(`^(\d{4})-Q([1-4])$`)
)

// ParseDate parses a transaction date. Calendar dates (optionally with a
// time of day), ISO week dates (2024-W05, 2024-W05-3) and quarters (2024-Q2)
// are accepted. Week and quarter dates resolve to their first day.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if m := isoWeekRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])
		day := 1
		if m[3] != "" {
			day, _ = strconv.Atoi(m[3])
		}
		if week < 1 || week > 53 {
			return time.Time{}, fmt.Errorf("week %d out of range", week)
		}
		return isoWeekStart(year, week).AddDate(0, 0, day-1), nil
	}

	if m := quarterRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		quarter, _ := strconv.Atoi(m[2])
		return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
}

// isoWeekStart returns the Monday of the given ISO week. Week 1 is the week
// containing January 4th.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}

// MonthKey returns the YYYY-MM key used for monthly trends.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseAmount parses a signed decimal amount for the transaction with the
// given id, returning a *ValidationError when it is not numeric.
func ParseAmount(id, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, invalid(id, "amount", "is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid(id, "amount", fmt.Sprintf("%q is not a number", raw))
	}
	return d, nil
}

// ValidateDate checks the date of the transaction with the given id and
// returns the parsed value.
func ValidateDate(id, raw string) (time.Time, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, invalid(id, "date", err.Error())
	}
	return t, nil
}

// DateRange bounds a transaction fetch. A zero From or To leaves that side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range, bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Valid reports whether From is not after To.
func (r DateRange) Valid() bool {
	return r.From.IsZero() || r.To.IsZero() || !r.From.After(r.To)
}
