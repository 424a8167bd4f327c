// Package clock supplies "now" to the engines so tests can pin the date.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the wall clock in Location (UTC when nil).
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(s.Location)
}

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today returns the clock's current calendar date at midnight UTC.
func Today(c Clock) time.Time {
	y, m, d := c.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
