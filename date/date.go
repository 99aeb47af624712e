// Package date provides day-granularity calendar types for the ledger.
package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format is the format used to represent dates as strings, ISO-8601.
const Format = "2006-01-02"

// Date represents a calendar day, with no time component.
type Date struct {
	y int
	m time.Month
	d int
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// AddMonths returns a new Date with the given number of calendar months added.
// Overflowing days normalize forward, so Jan 31 plus one month is Mar 2 or 3.
func (d Date) AddMonths(months int) Date { return New(d.y, d.m+time.Month(months), d.d) }

// DaysBetween returns the number of days from d to x, negative when x is before d.
func (d Date) DaysBetween(x Date) int {
	return int(x.time().Sub(d.time()) / (24 * time.Hour))
}

// Compare returns -1, 0 or +1 comparing d with x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// String formats the date in its standard format.
func (d Date) String() string { return d.time().Format(Format) }

// parse formats accepted by Parse, tried in order.
var parseFormats = []string{
	"2006-1-2",   // permissive ISO, allows 2024-3-5
	"02/01/2006", // day first
	"20060102",   // compact
}

// Parse parses a Date from a string. It accepts ISO "2006-01-02" (also with
// single-digit month or day), day-first "02/01/2006", and compact "20060102".
// Compact strings longer than eight digits are truncated to their date part,
// which covers OFX posted-date stamps like "20240315120000".
func Parse(str string) (Date, error) {
	s := strings.TrimSpace(str)
	if len(s) > 8 && !strings.ContainsAny(s, "-/") {
		s = s[:8]
	}
	for _, f := range parseFormats {
		if on, err := time.Parse(f, s); err == nil {
			return New(on.Date()), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: want %q, \"02/01/2006\" or \"20060102\"", str, Format)
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshal a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

// MarshalJSON implements the json specific way to marshal a date as a json string.
func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshal/unmarshal type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
