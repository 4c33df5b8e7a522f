// Package launchcalendar provides the date arithmetic used by the launch
// scheduling engine: UTC day boundaries, normalization to the fixed daily
// launch hour and day-offset windows. Everything here is pure; the current
// time always comes in through a Clock so batch logic stays testable.
package launchcalendar

import (
	"fmt"
	"time"
)

// LaunchHourUTC is the fixed hour of day (UTC) at which scheduled projects
// go live. Every scheduled_at timestamp carries this hour, never an
// arbitrary time of day.
const LaunchHourUTC = 8

// DateFormat is the canonical wire format for launch dates.
const DateFormat = "2006-01-02"

// Clock abstracts the ambient wall clock so scheduling and batch jobs can be
// tested against a fixed point in time.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// ParseDate parses a launch date in the canonical YYYY-MM-DD format and
// falls back to a permissive RFC3339 parse for clients that send full
// timestamps. The result is truncated to the day.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateFormat, raw); err == nil {
		return DayStart(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid launch date %q: expected %s", raw, DateFormat)
	}
	return DayStart(t), nil
}

// DayStart returns midnight UTC of the calendar day containing t.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayEnd returns the exclusive upper bound of the UTC day containing t.
func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24 * time.Hour)
}

// DayWindow returns the half-open interval [DayStart, DayEnd) for the UTC
// day containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := DayStart(t)
	return start, start.Add(24 * time.Hour)
}

// AtLaunchHour normalizes a date to the fixed launch hour of its UTC day.
func AtLaunchHour(t time.Time) time.Time {
	return DayStart(t).Add(LaunchHourUTC * time.Hour)
}

// AddDays returns the start of the UTC day offset days after t.
func AddDays(t time.Time, days int) time.Time {
	return DayStart(t).AddDate(0, 0, days)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b))
}
