package date

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// LatinFormat is the day-first format used by Argentine brokers and spreadsheets.
const LatinFormat = "02/01/2006"

const Day = 24 * time.Hour

// Date represent a date with no lower than day granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Of returns the calendar day of t, in t's own location.
func Of(t time.Time) Date { return New(t.Date()) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Today returns the current date.
//
// Only command line code should call it: calculations receive the reference day as a parameter.
func Today() Date { return Of(time.Now()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Sub returns the number of calendar days from x to d (negative when d is before x).
func (d Date) Sub(x Date) int {
	return int(d.time().Sub(x.time()).Round(Day) / Day)
}

// Year returns current year.
func (d Date) Year() int { return d.y }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Latin formats the date as DD/MM/YYYY.
func (d Date) Latin() string { return d.time().Format(LatinFormat) }

var latinDateRE = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})$`)

// Parse parses a Date from a string.
//
// It is lenient: it accepts "2025-7-1", a trailing time part ("2025-07-01T10:00:00Z"), a leading
// single quote (spreadsheet text marker) and the day-first forms "01/07/2025" and "01/07/25".
// Two digits years above 50 are in the 20th century.
func Parse(str string) (Date, error) {
	s := strings.TrimPrefix(strings.TrimSpace(str), "'")
	if i := strings.IndexAny(s, "T "); i > 0 && strings.Contains(s[:i], "-") {
		s = s[:i]
	}

	if m := latinDateRE.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			if year > 50 {
				year += 1900
			} else {
				year += 2000
			}
		}
		d := New(year, time.Month(month), day)
		// reject 31/02 and friends instead of silently normalizing them.
		if d.Day() != day || int(d.Month()) != month {
			return Date{}, fmt.Errorf("invalid date %q: no such day", str)
		}
		return d, nil
	}

	on, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q or %q: %w", str, readDateFormat, "DD/MM/YYYY", err)
	}
	return Of(on), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == "" {
		*j = Date{}
		return nil
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	if j.IsZero() {
		str = ""
	}
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)

// Compare returns -1, 0 or +1 depending on whether a is before, equal or after b.
func Compare(a, b Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// Max returns the latest of two dates.
func Max(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
