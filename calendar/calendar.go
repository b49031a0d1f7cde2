// Package calendar maps timestamps onto calendar days and aggregation periods.
//
// A calendar day is represented as midnight UTC of the local date, so day keys
// compare and hash the same regardless of the zone the timestamp came from.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownPeriod is returned by ParsePeriod for unsupported period names.
var ErrUnknownPeriod = errors.New("unknown aggregation period")

// Period is an aggregation bucket size.
type Period string

const (
	// Weekly buckets start on Monday and are labelled by that Monday.
	Weekly Period = "weekly"
	// Monthly buckets cover one calendar month and are labelled by its last day.
	Monthly Period = "monthly"
)

// ParsePeriod accepts weekly|monthly and the short forms W|M.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "week", "w":
		return Weekly, nil
	case "monthly", "month", "m":
		return Monthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// Day returns the calendar day of t in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIn returns the calendar day of t as observed in loc.
func DayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return Day(t)
	}
	return Day(t.In(loc))
}

// AddDays shifts a calendar day by n days.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// Label returns the bucket label containing day.
func (p Period) Label(day time.Time) time.Time {
	day = Day(day)
	switch p {
	case Monthly:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, 1, -1)
	default:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
}

// Start returns the first day of the bucket whose label is label.
func (p Period) Start(label time.Time) time.Time {
	if p == Monthly {
		return time.Date(label.Year(), label.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return label
}

// Next returns the label of the bucket after label.
func (p Period) Next(label time.Time) time.Time {
	if p == Monthly {
		first := time.Date(label.Year(), label.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, 2, -1)
	}
	return label.AddDate(0, 0, 7)
}

// Labels returns every bucket label from the bucket containing from through
// the bucket containing to, inclusive. Empty when to precedes from.
func (p Period) Labels(from, to time.Time) []time.Time {
	first, last := p.Label(from), p.Label(to)
	if last.Before(first) {
		return nil
	}
	var out []time.Time
	for l := first; !l.After(last); l = p.Next(l) {
		out = append(out, l)
	}
	return out
}

func (p Period) String() string { return string(p) }
