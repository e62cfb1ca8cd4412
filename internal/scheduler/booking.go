package scheduler

import "strings"

// Kind classifies what a booking occupies a room for.
type Kind string

const (
	// KindClass is an ordinary lecture or meeting.
	KindClass Kind = "class"
	// KindMaintenance marks the room as out of service.
	KindMaintenance Kind = "maintenance"
)

// maintenanceToken is the legacy marker detected in course names when no Kind is set.
const maintenanceToken = "MAINTENANCE"

// Booking is the projection view of a stored booking record. Times stay as the raw
// strings that were stored so malformed rows can be classified instead of rejected.
type Booking struct {
	ID         string
	Room       string
	Day        string
	StartTime  string
	EndTime    string
	CourseName string
	Instructor string
	Kind       Kind
}

// IsMaintenance applies the explicit Kind first and falls back to the course name token.
func (b Booking) IsMaintenance() bool {
	switch b.Kind {
	case KindMaintenance:
		return true
	case KindClass:
		return false
	}
	return IsMaintenanceText(b.CourseName)
}

// IsMaintenanceText reports whether free text carries the maintenance marker.
func IsMaintenanceText(text string) bool {
	return strings.Contains(strings.ToUpper(text), maintenanceToken)
}

// DeriveKind resolves the Kind a record should carry when the caller did not choose one.
func DeriveKind(kind Kind, courseName string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(string(kind)))) {
	case KindMaintenance:
		return KindMaintenance
	case KindClass:
		return KindClass
	}
	if IsMaintenanceText(courseName) {
		return KindMaintenance
	}
	return KindClass
}

// NormalizeDay upper-cases and trims a day name for matching.
func NormalizeDay(day string) string {
	return strings.ToUpper(strings.TrimSpace(day))
}

func (b Booking) info() string {
	return b.CourseName + " - " + b.Instructor
}

// ExclusionReason names why a booking did not contribute to a projection.
type ExclusionReason string

const (
	ExcludedMissingField  ExclusionReason = "missing_field"
	ExcludedInvalidTime   ExclusionReason = "invalid_time"
	ExcludedInvertedRange ExclusionReason = "inverted_range"
	ExcludedUnknownDay    ExclusionReason = "unknown_day"
	ExcludedUnknownRoom   ExclusionReason = "unknown_room"
)

// Exclusions counts skipped bookings by reason.
type Exclusions map[ExclusionReason]int

// Total sums every reason.
func (e Exclusions) Total() int {
	total := 0
	for _, n := range e {
		total += n
	}
	return total
}

func (e Exclusions) add(reason ExclusionReason) {
	e[reason]++
}

// resolved is a booking whose fields passed the projection filters.
type resolved struct {
	booking  Booking
	day      string
	interval Interval
}

// resolve validates the fields shared by the grid and live views. Room and day
// membership are checked by the caller because each view has its own catalog lookups.
func resolve(b Booking) (resolved, ExclusionReason, bool) {
	if strings.TrimSpace(b.Room) == "" || strings.TrimSpace(b.Day) == "" ||
		strings.TrimSpace(b.StartTime) == "" || strings.TrimSpace(b.EndTime) == "" {
		return resolved{}, ExcludedMissingField, false
	}

	start, err := ParseClockTime(b.StartTime)
	if err != nil {
		return resolved{}, ExcludedInvalidTime, false
	}
	end, err := ParseClockTime(b.EndTime)
	if err != nil {
		return resolved{}, ExcludedInvalidTime, false
	}
	interval := Interval{Start: start, End: end}
	if !interval.Valid() {
		return resolved{}, ExcludedInvertedRange, false
	}

	return resolved{booking: b, day: NormalizeDay(b.Day), interval: interval}, "", true
}
