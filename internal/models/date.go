package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day or a location. A value read
// as "2024-01-31" is January 31st whatever the local timezone is.
//
// The calendar arithmetic comes from civil.Date; Date adds the wire codecs
// of the backend, the CSV file and the YAML output.
type Date struct {
	civil.Date
}

// NewDate returns the date for the given components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

// ParseDate parses "YYYY-MM-DD". A trailing time part ("T..." or " ...") is
// ignored; only the date components are kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD: %w", s, err)
	}
	return Date{d}, nil
}

// MustParseDate is like ParseDate but panics on error. Intended for tests and
// constant tables.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.In(time.UTC)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Date == civil.Date{}
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Date.Before(other.Date):
		return -1
	case d.Date.After(other.Date):
		return 1
	default:
		return 0
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Date.Before(other.Date) }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.Date.After(other.Date) }

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{d.Date.AddDays(n)}
}

// String formats the date as YYYY-MM-DD; the zero date formats as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Date.String()
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string, or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", ISO timestamps (date part kept) and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	return d.set(s)
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (d Date) MarshalCSV() (string, error) {
	return d.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (d *Date) UnmarshalCSV(s string) error {
	return d.set(s)
}

// MarshalYAML encodes the date as its string form.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// set parses s into d; blank input leaves the zero date.
func (d *Date) set(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
