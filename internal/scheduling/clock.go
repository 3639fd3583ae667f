package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day expressed in minutes since midnight.
// 24:00 (1440) is accepted as a closing time only.
type Clock int

const (
	minutesPerDay = 24 * 60

	// DateLayout is the calendar date format used on the wire and in the DB.
	DateLayout = "2006-01-02"
)

var (
	meridiemPattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(AM|PM)$`)
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// NewClock builds a Clock from an hour and minute.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ClockFromTime drops the date part of t.
func ClockFromTime(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

// ParseClock accepts "15:04", "15:04:05", "3:04 PM" and "3:04PM".
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)

	if m := meridiemPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		switch strings.ToUpper(m[3]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
		return NewClock(hour, minute), nil
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour == 24 && minute == 0 {
			return Clock(minutesPerDay), nil
		}
		if hour > 23 || minute > 59 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		return NewClock(hour, minute), nil
	}

	return 0, fmt.Errorf("invalid time %q", s)
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// String renders the clock the way Postgres TIME columns store it.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:00", c.Hour(), c.Minute())
}

// Format12 renders the clock as "9:00 AM".
func (c Clock) Format12() string {
	hour := c.Hour() % 24
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, c.Minute(), suffix)
}

// On places the clock on the given calendar date.
func (c Clock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location())
}

// DateOf normalizes t to its calendar date at midnight UTC so dates compare
// with == and encode cleanly into DATE columns.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}
