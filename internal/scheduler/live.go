package scheduler

import (
	"sort"
	"strings"
)

// LiveStatus summarizes room usage at one moment.
type LiveStatus struct {
	Day              string
	Time             ClockTime
	Total            int
	Occupied         int
	Maintenance      int
	Available        int
	OccupiedRooms    []string
	MaintenanceRooms []string
	Excluded         Exclusions
}

// ComputeLiveStatus counts the rooms in use on day at now.
//
// A booking is current when Start <= now < End. A room with any current maintenance
// booking counts as maintenance even if an ordinary booking also covers it. Rooms
// outside the catalog are excluded, so Occupied + Maintenance + Available == Total.
func ComputeLiveStatus(bookings []Booking, rooms []string, day string, now ClockTime) LiveStatus {
	status := LiveStatus{
		Day:      NormalizeDay(day),
		Time:     now,
		Total:    len(rooms),
		Excluded: Exclusions{},
	}

	known := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		known[room] = struct{}{}
	}

	occupied := make(map[string]struct{})
	maintenance := make(map[string]struct{})

	for _, booking := range bookings {
		if status.Day == "" || NormalizeDay(booking.Day) != status.Day {
			continue
		}
		entry, reason, ok := resolve(booking)
		if !ok {
			status.Excluded.add(reason)
			continue
		}
		if !entry.interval.Contains(now) {
			continue
		}
		room := strings.TrimSpace(entry.booking.Room)
		if _, ok := known[room]; !ok {
			status.Excluded.add(ExcludedUnknownRoom)
			continue
		}
		if entry.booking.IsMaintenance() {
			maintenance[room] = struct{}{}
		} else {
			occupied[room] = struct{}{}
		}
	}

	for room := range maintenance {
		delete(occupied, room)
	}

	status.OccupiedRooms = sortedKeys(occupied)
	status.MaintenanceRooms = sortedKeys(maintenance)
	status.Occupied = len(status.OccupiedRooms)
	status.Maintenance = len(status.MaintenanceRooms)
	status.Available = status.Total - status.Occupied - status.Maintenance
	return status
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
