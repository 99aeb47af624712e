package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthFormat is the format used to represent months as strings.
const MonthFormat = "2006-01"

// Month represents a calendar month of a specific year.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns a normalized Month for the given year and month.
func NewMonth(year int, month time.Month) Month {
	d := New(year, month, 1)
	return Month{y: d.Year(), m: d.Month()}
}

// MonthOf returns the month the date d falls in.
func MonthOf(d Date) Month { return Month{y: d.Year(), m: d.Month()} }

// ThisMonth returns the current month.
func ThisMonth() Month { return MonthOf(Today()) }

// First returns the first day of the month.
func (m Month) First() Date { return New(m.y, m.m, 1) }

// Last returns the last day of the month.
func (m Month) Last() Date { return New(m.y, m.m+1, 0) }

// Contains reports whether the date d falls in the month.
func (m Month) Contains(d Date) bool { return d.Year() == m.y && d.Month() == m.m }

// Add returns the month n months later (or earlier, for negative n).
func (m Month) Add(n int) Month { return NewMonth(m.y, m.m+time.Month(n)) }

// Year returns the year of the month.
func (m Month) Year() int { return m.y }

// Month returns the month of the year.
func (m Month) Month() time.Month { return m.m }

// String formats the month in its standard "2006-01" format.
func (m Month) String() string { return m.First().time().Format(MonthFormat) }

// ParseMonth parses a Month from a "2006-01" string.
func ParseMonth(str string) (Month, error) {
	on, err := time.Parse(MonthFormat, str)
	if err != nil {
		// allow single digit months too
		on, err = time.Parse("2006-1", str)
	}
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: want format %q", str, MonthFormat)
	}
	return NewMonth(on.Year(), on.Month()), nil
}

// MustParseMonth is like ParseMonth but panics on error.
func MustParseMonth(str string) Month {
	m, err := ParseMonth(str)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// UnmarshalJSON implements json.Unmarshaler for a month string.
func (j *Month) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	m, err := ParseMonth(str)
	if err != nil {
		return err
	}
	*j = m
	return nil
}

// MarshalJSON implements json.Marshaler for a month string.
func (j Month) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}
