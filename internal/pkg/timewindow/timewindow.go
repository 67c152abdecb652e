// Package timewindow compares wall-clock times against daily "HH:MM" windows.
package timewindow

import (
	"errors"
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

var ErrInvalidClock = errors.New("time must be in HH:MM 24-hour format")

// Clock is a wall-clock time expressed as minutes after midnight.
type Clock int

// ParseClock parses a zero-padded "HH:MM" 24-hour string.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	return Clock(hour*60 + minute), nil
}

// ClockOf returns the wall-clock minute of t in its own location.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Window is a daily range with inclusive bounds. End before Start means the
// window spans midnight, e.g. 22:00-06:00.
type Window struct {
	Start Clock
	End   Clock
}

// ParseWindow parses both bounds of a window.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// SpansMidnight reports whether the window wraps past 00:00.
func (w Window) SpansMidnight() bool {
	return w.End < w.Start
}

// Contains reports whether c falls inside the window, bounds included.
func (w Window) Contains(c Clock) bool {
	if w.SpansMidnight() {
		return c >= w.Start || c <= w.End
	}
	return c >= w.Start && c <= w.End
}

// ContainsWindow reports whether inner lies entirely inside w.
func (w Window) ContainsWindow(inner Window) bool {
	if !w.Contains(inner.Start) || !w.Contains(inner.End) {
		return false
	}
	return w.offset(inner.Start) <= w.offset(inner.End)
}

// Duration is the length of the window; a wrapping window crosses midnight.
func (w Window) Duration() time.Duration {
	minutes := int(w.End) - int(w.Start)
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return time.Duration(minutes) * time.Minute
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// offset is the distance of c from the window start, walking forward.
func (w Window) offset(c Clock) int {
	d := int(c) - int(w.Start)
	if d < 0 {
		d += minutesPerDay
	}
	return d
}

// IsWithinWindow reports whether currentTime lies inside [windowStart, windowEnd].
// All values are "HH:MM" strings; malformed input is never within.
func IsWithinWindow(currentTime, windowStart, windowEnd string) bool {
	c, err := ParseClock(currentTime)
	if err != nil {
		return false
	}
	w, err := ParseWindow(windowStart, windowEnd)
	if err != nil {
		return false
	}
	return w.Contains(c)
}
