package scheduling

import (
	"errors"
	"fmt"
)

// DefaultIntervalMinutes is used when an office has no usable interval set.
const DefaultIntervalMinutes = 30

var ErrConfigInvalid = errors.New("invalid office hours configuration")

// Grid describes the candidate start times of an office's working day.
type Grid struct {
	Open     Clock
	Close    Clock
	Interval int // minutes
}

// NewGrid validates the office hours. An interval <= 0 falls back to
// DefaultIntervalMinutes; open >= close is reported as ErrConfigInvalid.
func NewGrid(open, close Clock, interval int) (Grid, error) {
	if interval <= 0 {
		interval = DefaultIntervalMinutes
	}
	if open < 0 || close > minutesPerDay {
		return Grid{}, fmt.Errorf("%w: hours %s-%s out of range", ErrConfigInvalid, open, close)
	}
	if open >= close {
		return Grid{}, fmt.Errorf("%w: opening %s is not before closing %s", ErrConfigInvalid, open, close)
	}
	return Grid{Open: open, Close: close, Interval: interval}, nil
}

// Slots lists open, open+interval, ... while the slot starts before closing.
// A trailing partial interval still yields a slot as long as it starts
// before closing time.
func (g Grid) Slots() []Clock {
	if g.Interval <= 0 || g.Open >= g.Close {
		return nil
	}
	out := make([]Clock, 0, int(g.Close-g.Open)/g.Interval+1)
	for t := g.Open; t < g.Close; t += Clock(g.Interval) {
		out = append(out, t)
	}
	return out
}

// Contains reports whether c is one of the grid's start times.
func (g Grid) Contains(c Clock) bool {
	if g.Interval <= 0 || c < g.Open || c >= g.Close {
		return false
	}
	return int(c-g.Open)%g.Interval == 0
}
