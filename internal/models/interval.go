package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every minute-of-day value to [0, MinutesPerDay).
const MinutesPerDay = 24 * 60

// DayOfWeek identifies a day within the weekly cycle.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MON"
	Tuesday   DayOfWeek = "TUE"
	Wednesday DayOfWeek = "WED"
	Thursday  DayOfWeek = "THU"
	Friday    DayOfWeek = "FRI"
	Saturday  DayOfWeek = "SAT"
	Sunday    DayOfWeek = "SUN"
)

// Weekdays lists the days in calendar order starting on Monday.
var Weekdays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether the day is one of MON..SUN.
func (d DayOfWeek) Valid() bool {
	return d.Index() >= 0
}

// Index returns the zero-based position of the day in the week, or -1.
func (d DayOfWeek) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// ParseDayOfWeek normalises a day code such as "mon" or "MON".
func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(raw)))
	if !day.Valid() {
		return "", &InvalidIntervalError{Reason: fmt.Sprintf("unknown day of week %q", raw)}
	}
	return day, nil
}

// InvalidIntervalError reports a malformed weekly interval.
type InvalidIntervalError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidIntervalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "invalid interval: " + e.Reason
}

// WeeklyInterval is a half-open [StartMinute, EndMinute) range on a single day of the week.
type WeeklyInterval struct {
	DayOfWeek   DayOfWeek `json:"day_of_week"`
	StartMinute int       `json:"start_minute"`
	EndMinute   int       `json:"end_minute"`
}

// NewWeeklyInterval validates and builds an interval.
func NewWeeklyInterval(day DayOfWeek, startMinute, endMinute int) (WeeklyInterval, error) {
	interval := WeeklyInterval{DayOfWeek: day, StartMinute: startMinute, EndMinute: endMinute}
	if err := interval.Validate(); err != nil {
		return WeeklyInterval{}, err
	}
	return interval, nil
}

// NewWeeklyIntervalFromClock builds an interval from zero-padded "HH:MM" strings.
func NewWeeklyIntervalFromClock(day DayOfWeek, start, end string) (WeeklyInterval, error) {
	startMinute, err := ParseClock(start)
	if err != nil {
		return WeeklyInterval{}, err
	}
	endMinute, err := ParseClock(end)
	if err != nil {
		return WeeklyInterval{}, err
	}
	return NewWeeklyInterval(day, startMinute, endMinute)
}

// Validate checks the day code, the minute bounds and the ordering.
func (w WeeklyInterval) Validate() error {
	if !w.DayOfWeek.Valid() {
		return &InvalidIntervalError{Reason: fmt.Sprintf("unknown day of week %q", w.DayOfWeek)}
	}
	if w.StartMinute < 0 || w.StartMinute >= MinutesPerDay {
		return &InvalidIntervalError{Reason: fmt.Sprintf("start minute %d out of range", w.StartMinute)}
	}
	if w.EndMinute < 0 || w.EndMinute >= MinutesPerDay {
		return &InvalidIntervalError{Reason: fmt.Sprintf("end minute %d out of range", w.EndMinute)}
	}
	if w.EndMinute <= w.StartMinute {
		return &InvalidIntervalError{Reason: "end must be after start"}
	}
	return nil
}

// Overlaps reports whether both intervals share at least one minute on the same day.
// Back-to-back intervals do not overlap.
func (w WeeklyInterval) Overlaps(other WeeklyInterval) bool {
	if w.DayOfWeek != other.DayOfWeek {
		return false
	}
	return w.StartMinute < other.EndMinute && w.EndMinute > other.StartMinute
}

// Duration returns the length of the interval in minutes.
func (w WeeklyInterval) Duration() int {
	return w.EndMinute - w.StartMinute
}

// StartClock renders the start as "HH:MM".
func (w WeeklyInterval) StartClock() string {
	return FormatClock(w.StartMinute)
}

// EndClock renders the end as "HH:MM".
func (w WeeklyInterval) EndClock() string {
	return FormatClock(w.EndMinute)
}

// String renders the interval as "MON 09:00-10:30".
func (w WeeklyInterval) String() string {
	return fmt.Sprintf("%s %s-%s", w.DayOfWeek, w.StartClock(), w.EndClock())
}

// ParseClock converts a zero-padded 24h "HH:MM" string into minutes since midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, &InvalidIntervalError{Reason: fmt.Sprintf("time %q must be HH:MM", raw)}
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, &InvalidIntervalError{Reason: fmt.Sprintf("invalid hour in %q", raw)}
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, &InvalidIntervalError{Reason: fmt.Sprintf("invalid minute in %q", raw)}
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
