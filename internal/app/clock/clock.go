// Package clock gives handlers an injectable notion of "now" and "today".
package clock

import (
	"time"

	"rento/internal/domain/shared/daterange"
)

// Clock resolves calendar dates in a fixed location.
type Clock struct {
	NowFunc  func() time.Time
	Location *time.Location
}

func New(loc *time.Location) Clock {
	return Clock{NowFunc: time.Now, Location: loc}
}

// Fixed always reports t.
func Fixed(t time.Time, loc *time.Location) Clock {
	return Clock{NowFunc: func() time.Time { return t }, Location: loc}
}

func (c Clock) Now() time.Time {
	if c.NowFunc == nil {
		return time.Now().UTC()
	}
	return c.NowFunc().UTC()
}

// Today is the calendar date of Now in the clock's location.
func (c Clock) Today() daterange.Date {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return daterange.Today(c.Now(), loc)
}
