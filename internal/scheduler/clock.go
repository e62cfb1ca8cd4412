package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidClockTime is returned when a wall-clock string cannot be parsed.
var ErrInvalidClockTime = errors.New("scheduler: invalid clock time")

// MinutesPerDay bounds every ClockTime value.
const MinutesPerDay = 24 * 60

// ClockTime is a local wall-clock time expressed in minutes since midnight.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute components.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime accepts "H:MM", "HH:MM", "HH:MM:SS" and the dotted "HH.MM" spelling
// common in Indonesian timetables. Seconds are truncated.
func ParseClockTime(value string) (ClockTime, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidClockTime)
	}

	sep := ":"
	if !strings.Contains(raw, ":") && strings.Count(raw, ".") == 1 {
		sep = "."
	}
	parts := strings.Split(raw, sep)
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}

	hour, err := parseComponent(parts[0], 1, 2)
	if err != nil || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	minute, err := parseComponent(parts[1], 2, 2)
	if err != nil || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	if len(parts) == 3 {
		second, err := parseComponent(parts[2], 2, 2)
		if err != nil || second > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
		}
	}

	return NewClockTime(hour, minute), nil
}

func parseComponent(value string, minLen, maxLen int) (int, error) {
	if len(value) < minLen || len(value) > maxLen {
		return 0, ErrInvalidClockTime
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, ErrInvalidClockTime
		}
	}
	return strconv.Atoi(value)
}

// Hour returns the hour component.
func (t ClockTime) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t ClockTime) Minute() int { return int(t) % 60 }

// String renders the zero-padded HH:MM form.
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Interval is a half-open [Start, End) range of wall-clock time.
type Interval struct {
	Start ClockTime
	End   ClockTime
}

// ParseInterval parses a "HH:MM-HH:MM" label.
func ParseInterval(label string) (Interval, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(label), "-")
	if !ok {
		return Interval{}, fmt.Errorf("%w: interval %q", ErrInvalidClockTime, label)
	}
	return ParseRange(start, end)
}

// ParseRange parses a start and end pair and rejects empty or inverted ranges.
func ParseRange(start, end string) (Interval, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return Interval{}, err
	}
	interval := Interval{Start: s, End: e}
	if !interval.Valid() {
		return Interval{}, fmt.Errorf("%w: %s-%s does not move forward", ErrInvalidClockTime, s, e)
	}
	return interval, nil
}

// Valid reports whether the interval covers at least one minute.
func (i Interval) Valid() bool {
	return i.Start < i.End
}

// Contains reports whether t falls inside the interval: Start <= t < End.
func (i Interval) Contains(t ClockTime) bool {
	return i.Start <= t && t < i.End
}

// String renders the "HH:MM-HH:MM" label.
func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// Overlaps reports whether two half-open intervals intersect. Touching endpoints do
// not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}
