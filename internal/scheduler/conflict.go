package scheduler

import "strings"

// ConflictType describes the kind of overlap detected between bookings.
type ConflictType string

const (
	// ConflictTypeRoom indicates the room is already booked for an overlapping period.
	ConflictTypeRoom ConflictType = "room"
	// ConflictTypeMaintenance indicates the room is under maintenance for an overlapping period.
	ConflictTypeMaintenance ConflictType = "maintenance"
)

// Conflict details an overlapping booking that callers can present to users.
type Conflict struct {
	WithBookingID string
	Type          ConflictType
	Room          string
	Day           string
	Overlap       Interval
}

// DetectConflicts lists existing bookings that share the candidate's room and day and
// overlap its time range. Bookings that would be excluded from projection never conflict.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	target, _, ok := resolve(candidate)
	if !ok {
		return nil
	}
	room := strings.TrimSpace(target.booking.Room)

	var conflicts []Conflict
	for _, booking := range existing {
		if booking.ID != "" && booking.ID == candidate.ID {
			continue
		}
		entry, _, ok := resolve(booking)
		if !ok || entry.day != target.day || strings.TrimSpace(entry.booking.Room) != room {
			continue
		}
		if !Overlaps(entry.interval, target.interval) {
			continue
		}

		conflictType := ConflictTypeRoom
		if entry.booking.IsMaintenance() {
			conflictType = ConflictTypeMaintenance
		}
		conflicts = append(conflicts, Conflict{
			WithBookingID: booking.ID,
			Type:          conflictType,
			Room:          room,
			Day:           target.day,
			Overlap: Interval{
				Start: max(entry.interval.Start, target.interval.Start),
				End:   min(entry.interval.End, target.interval.End),
			},
		})
	}
	return conflicts
}
