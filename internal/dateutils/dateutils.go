// Package dateutils provides calendar helpers on civil dates: flexible
// parsing of user input, month boundaries and the quick filter ranges.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fintrack/fintrack/internal/models"
)

// Common date format constants accepted from user input
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutSlashISO = "2006/01/02"
	DateLayoutMonth    = "Jan 2, 2006"
	DateLayoutLong     = "January 2, 2006"
)

// CommonFormats is the list of layouts tried by ParseUserDate, in order.
// Ambiguous day/month layouts such as 01/02/2006 are deliberately absent.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutEuropean,
	DateLayoutSlashISO,
	DateLayoutMonth,
	DateLayoutLong,
	"2.1.2006",
	"2 January 2006",
	"02 Jan 2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseUserDate parses a date typed by a user in one of CommonFormats. The
// layouts carry no zone, so time.Parse yields UTC and the day never moves.
func ParseUserDate(dateStr string) (models.Date, error) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return models.Date{}, fmt.Errorf("unable to parse date: empty")
	}
	if d, err := models.ParseDate(cleaned); err == nil {
		return d, nil
	}
	for _, format := range CommonFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return models.DateOf(t), nil
		}
	}
	return models.Date{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// Today returns the current civil date in the local timezone.
func Today() models.Date {
	return models.DateOf(time.Now())
}

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d models.Date) models.Date {
	return models.NewDate(d.Year, d.Month, 1)
}

// EndOfMonth returns the last day of d's month.
func EndOfMonth(d models.Date) models.Date {
	return models.DateOf(time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC))
}

// AddMonths moves d by n months, clamping the day to the target month's
// length (March 31 minus one month is February 28 or 29).
func AddMonths(d models.Date, n int) models.Date {
	first := models.DateOf(time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
	last := EndOfMonth(first)
	if d.Day > last.Day {
		return last
	}
	return models.NewDate(first.Year, first.Month, d.Day)
}

// Range is an inclusive date interval.
type Range struct {
	Start models.Date
	End   models.Date
}

// Contains reports whether d lies within the range. A zero bound is open.
func (r Range) Contains(d models.Date) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// QuickRange names a preset filter range.
type QuickRange string

// Quick ranges
const (
	ThisMonth       QuickRange = "this-month"
	LastMonth       QuickRange = "last-month"
	LastThreeMonths QuickRange = "last-3-months"
	ThisYear        QuickRange = "this-year"
)

// QuickRanges lists the presets in display order.
var QuickRanges = []QuickRange{ThisMonth, LastMonth, LastThreeMonths, ThisYear}

// ParseQuickRange validates s as a quick range name.
func ParseQuickRange(s string) (QuickRange, error) {
	q := QuickRange(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range QuickRanges {
		if q == known {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown range %q (expected this-month, last-month, last-3-months or this-year)", s)
}

// Resolve returns the interval the preset covers relative to now.
//
//	this-month     first of the current month .. now
//	last-month     first .. last day of the previous month
//	last-3-months  first of the month two months back .. now
//	this-year      January 1st .. now
func (q QuickRange) Resolve(now models.Date) (Range, error) {
	switch q {
	case ThisMonth:
		return Range{Start: StartOfMonth(now), End: now}, nil
	case LastMonth:
		prev := AddMonths(StartOfMonth(now), -1)
		return Range{Start: prev, End: EndOfMonth(prev)}, nil
	case LastThreeMonths:
		return Range{Start: AddMonths(StartOfMonth(now), -2), End: now}, nil
	case ThisYear:
		return Range{Start: models.NewDate(now.Year, time.January, 1), End: now}, nil
	default:
		return Range{}, fmt.Errorf("unknown range %q", q)
	}
}
