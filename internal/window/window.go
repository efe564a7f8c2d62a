// Package window implements day-granularity, UTC-normalized date arithmetic
// used to decide when a sentinel is due or approaching. All comparisons work
// on whole calendar days; the deployment region never changes which day
// "today" is.
package window

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Date is a calendar day with no time-of-day component, held internally as
// midnight UTC.
type Date struct {
	t time.Time
}

// FromTime normalizes t to its UTC calendar day.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return Date{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar day.
func Today() Date {
	return FromTime(time.Now())
}

// Parse reads a strict YYYY-MM-DD date.
func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParse is Parse for tests and seed data; panics on malformed input.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.t.Format(layout)
}

func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

// Equal compares calendar days by their normalized form, not by timestamp
// subtraction.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

// AddDays shifts the date by n whole calendar days (negative n goes back).
func (d Date) AddDays(n int) Date {
	return FromTime(d.t.AddDate(0, 0, n))
}

// DaysBetween returns the whole-calendar-day difference target - reference.
// Both dates are UTC midnights, so the difference is an exact multiple of
// 24h regardless of leap years or local DST transitions. Negative when
// target precedes reference.
func DaysBetween(target, reference Date) int {
	return int(target.t.Sub(reference.t).Hours() / 24)
}

// WithinWindow reports whether target falls on reference or within
// windowDays after it, inclusive on both ends. windowDays == 0 matches the
// reference day only; targets in the past are never within any window.
func WithinWindow(target, reference Date, windowDays int) bool {
	n := DaysBetween(target, reference)
	return n >= 0 && n <= windowDays
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("parse date %s: not a JSON string", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value formats the date for DATE columns.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan accepts DATE columns as time.Time (parseTime=true) or raw bytes.
// A time.Time is taken at its own calendar day: DATE columns carry no
// instant, so converting through UTC first could shift the day.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Date{t: time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)}
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	return fmt.Errorf("date: cannot scan %T", src)
}
