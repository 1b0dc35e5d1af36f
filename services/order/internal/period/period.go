// Package period turns an admin-selected period name into a half-open
// [start, end) range of local calendar days.
package period

import (
	"errors"
	"fmt"
	"time"
)

const (
	Today     = "today"
	Yesterday = "yesterday"
	Week      = "week"
	Month     = "month"
)

var ErrUnknown = errors.New("unknown period")

type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Window computes the range for name relative to now, in now's location.
// Week and month cover the last 7 and 30 days including today.
func Window(name string, now time.Time) (Range, error) {
	y, m, d := now.Date()
	day := func(offset int) time.Time {
		return time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location())
	}

	switch name {
	case Today:
		return Range{Start: day(0), End: day(1)}, nil
	case Yesterday:
		return Range{Start: day(-1), End: day(0)}, nil
	case Week:
		return Range{Start: day(-6), End: day(1)}, nil
	case Month:
		return Range{Start: day(-29), End: day(1)}, nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrUnknown, name)
}
