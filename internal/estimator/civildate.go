package estimator

import (
	"fmt"
	"time"
)

// CivilDate is a year/month/day triple with no time-of-day and no timezone.
// Two CivilDates are equal iff all three fields match, so values are usable
// as map keys.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// CivilDateOf truncates an instant to its calendar date in the instant's own
// location. The offset never shifts the result: 2024-01-01T23:30+05:00 is
// January 1st, regardless of what instant that is in UTC.
func CivilDateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// ParseCivilDate parses a "2006-01-02" string.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("parse civil date %q: %w", s, err)
	}
	return CivilDateOf(t), nil
}

// AddDays returns the date n calendar days after d (or before, for negative n).
// Month and year boundaries are normalized by the time package.
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return CivilDateOf(t)
}

func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d CivilDate) After(other CivilDate) bool {
	return other.Before(d)
}

func (d CivilDate) IsZero() bool {
	return d == CivilDate{}
}

// Time returns midnight of d in the given location.
func (d CivilDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *CivilDate) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("civil date: expected quoted string, got %s", data)
	}
	parsed, err := ParseCivilDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// BusyDaySet is a set of calendar dates flagged as operationally congested.
// Membership is by the civil triple only.
type BusyDaySet map[CivilDate]struct{}

// NewBusyDaySet builds a set from dates, dropping duplicates.
func NewBusyDaySet(dates ...CivilDate) BusyDaySet {
	s := make(BusyDaySet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

func (s BusyDaySet) Contains(d CivilDate) bool {
	_, ok := s[d]
	return ok
}

func (s BusyDaySet) Len() int {
	return len(s)
}
