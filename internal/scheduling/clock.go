// Package scheduling holds the pure rules of the scheduler: time-of-day
// arithmetic, interval conflicts, slot generation and the appointment
// lifecycle. Nothing here touches storage or the clock.
package scheduling

import (
	"fmt"
	"time"
)

const (
	clockLayout = "15:04"
	endOfDay    = "24:00"
)

// Minutes is a time of day counted in minutes since midnight.
type Minutes int

// EndOfDay is midnight at the close of the day. It is only usable as an end bound.
const EndOfDay Minutes = 24 * 60

// ParseClock parses a strict zero-padded HH:MM time of day. "24:00" parses
// as EndOfDay so a window can run until midnight.
func ParseClock(s string) (Minutes, error) {
	if s == endOfDay {
		return EndOfDay, nil
	}
	if len(s) != len(clockLayout) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return Minutes(t.Hour()*60 + t.Minute()), nil
}

// ValidClock reports whether s is a well-formed HH:MM time of day.
func ValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// MinutesOf returns the time of day of t in t's location.
func MinutesOf(t time.Time) Minutes {
	return Minutes(t.Hour()*60 + t.Minute())
}

func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Interval is a half-open [Start, End) range of minutes within a day.
type Interval struct {
	Start Minutes
	End   Minutes
}

// ParseInterval parses a start/end pair and requires start < end.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if s >= e {
		return Interval{}, fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return Interval{Start: s, End: e}, nil
}

// Contains reports whether other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return other.Start >= i.Start && other.End <= i.End
}

// Duration returns the length of the interval in minutes.
func (i Interval) Duration() int {
	return int(i.End - i.Start)
}
