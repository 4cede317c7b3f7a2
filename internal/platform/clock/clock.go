package clock

import "time"

// Clock supplies business time. All schedule boundaries, dwell windows and
// date-only comparisons are evaluated in the employer's fixed timezone, so
// every component takes a Clock instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type businessClock struct {
	loc *time.Location
}

// NewBusiness returns a Clock pinned to the named IANA timezone.
func NewBusiness(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &businessClock{loc: loc}, nil
}

func (c *businessClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *businessClock) Location() *time.Location {
	return c.loc
}

// Fixed is a deterministic Clock for tests.
type Fixed struct {
	Instant time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Instant
}

func (f *Fixed) Location() *time.Location {
	return f.Instant.Location()
}

const dayLayout = "2006-01-02"

// StartOfDay truncates an instant to business midnight.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayKey renders the calendar date of an instant, for use as a map key.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// SameDay reports whether two instants fall on the same business calendar day.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// IsWeekend reports whether the instant falls on Saturday or Sunday.
func IsWeekend(t time.Time, loc *time.Location) bool {
	wd := t.In(loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
