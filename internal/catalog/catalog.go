// Package catalog holds the static room, day and slot axes that schedules are
// projected onto.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-scheduler/internal/scheduler"
)

// Defaults used when configuration does not override them.
var (
	DefaultRooms      = []string{"B4A", "B4B", "B4C", "B4D", "B4E", "B4F", "B4G", "B4H"}
	DefaultDays       = []string{"SENIN", "SELASA", "RABU", "KAMIS", "JUMAT", "SABTU"}
	DefaultBreakSlots = []string{"12:00-13:00"}
	DefaultSlots      = []string{
		"07:00-07:50",
		"07:50-08:40",
		"08:40-09:30",
		"09:30-10:20",
		"10:20-11:10",
		"11:10-12:00",
		"12:00-13:00",
		"13:00-13:50",
		"13:50-14:40",
		"14:40-15:30",
		"15:30-16:20",
	}
)

// ErrInvalidCatalog wraps every catalog construction failure.
var ErrInvalidCatalog = errors.New("catalog: invalid definition")

// Catalog is the immutable set of rooms, day names and time slots.
type Catalog struct {
	rooms []string
	days  []string
	slots []scheduler.Slot
}

// Definition is the raw configuration a Catalog is built from.
type Definition struct {
	Rooms      []string
	Days       []string
	Slots      []string
	BreakSlots []string
}

// Default returns the built-in definition.
func Default() Definition {
	return Definition{
		Rooms:      append([]string(nil), DefaultRooms...),
		Days:       append([]string(nil), DefaultDays...),
		Slots:      append([]string(nil), DefaultSlots...),
		BreakSlots: append([]string(nil), DefaultBreakSlots...),
	}
}

// New validates a definition. Days are listed from Monday onward; every break label
// must also appear among the slots.
func New(def Definition) (*Catalog, error) {
	var problems []string

	rooms := make([]string, 0, len(def.Rooms))
	seenRooms := make(map[string]struct{}, len(def.Rooms))
	for _, room := range def.Rooms {
		room = strings.TrimSpace(room)
		if room == "" {
			continue
		}
		if _, dup := seenRooms[room]; dup {
			problems = append(problems, fmt.Sprintf("duplicate room %q", room))
			continue
		}
		seenRooms[room] = struct{}{}
		rooms = append(rooms, room)
	}
	if len(rooms) == 0 {
		problems = append(problems, "at least one room is required")
	}

	days := make([]string, 0, len(def.Days))
	seenDays := make(map[string]struct{}, len(def.Days))
	for _, day := range def.Days {
		day = scheduler.NormalizeDay(day)
		if day == "" {
			continue
		}
		if _, dup := seenDays[day]; dup {
			problems = append(problems, fmt.Sprintf("duplicate day %q", day))
			continue
		}
		seenDays[day] = struct{}{}
		days = append(days, day)
	}
	if len(days) == 0 {
		problems = append(problems, "at least one day is required")
	}
	if len(days) > 7 {
		problems = append(problems, "no more than seven days can be listed")
	}

	breaks := make(map[string]bool, len(def.BreakSlots))
	for _, label := range def.BreakSlots {
		if label = strings.TrimSpace(label); label != "" {
			breaks[label] = false
		}
	}

	slots := make([]scheduler.Slot, 0, len(def.Slots))
	for _, label := range def.Slots {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		interval, err := scheduler.ParseInterval(label)
		if err != nil {
			problems = append(problems, fmt.Sprintf("slot %q: %v", label, err))
			continue
		}
		_, isBreak := breaks[label]
		if isBreak {
			breaks[label] = true
		}
		slots = append(slots, scheduler.Slot{Label: interval.String(), Interval: interval, Break: isBreak})
	}
	if len(slots) == 0 {
		problems = append(problems, "at least one slot is required")
	}
	for label, matched := range breaks {
		if !matched {
			problems = append(problems, fmt.Sprintf("break %q is not a listed slot", label))
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return &Catalog{rooms: rooms, days: days, slots: slots}, nil
}

// MustDefault builds the default catalog and panics if the built-in values are broken.
func MustDefault() *Catalog {
	c, err := New(Default())
	if err != nil {
		panic(err)
	}
	return c
}

// Rooms returns a copy of the room codes in display order.
func (c *Catalog) Rooms() []string { return append([]string(nil), c.rooms...) }

// Days returns a copy of the upper-case day names, Monday first.
func (c *Catalog) Days() []string { return append([]string(nil), c.days...) }

// Slots returns a copy of the time slots in display order.
func (c *Catalog) Slots() []scheduler.Slot { return append([]scheduler.Slot(nil), c.slots...) }

// Layout returns the projection axes.
func (c *Catalog) Layout() scheduler.Layout {
	return scheduler.Layout{Rooms: c.Rooms(), Days: c.Days(), Slots: c.Slots()}
}

// HasRoom reports whether room is part of the catalog.
func (c *Catalog) HasRoom(room string) bool {
	room = strings.TrimSpace(room)
	for _, r := range c.rooms {
		if r == room {
			return true
		}
	}
	return false
}

// HasDay reports whether day names a catalog day, case-insensitively.
func (c *Catalog) HasDay(day string) bool {
	day = scheduler.NormalizeDay(day)
	for _, d := range c.days {
		if d == day {
			return true
		}
	}
	return false
}

// DayFor maps a weekday onto the catalog day name. Monday is the first listed day;
// weekdays past the end of the list, Sunday included, have no name.
func (c *Catalog) DayFor(weekday time.Weekday) (string, bool) {
	index := int(weekday) - 1
	if weekday == time.Sunday {
		index = 6
	}
	if index < 0 || index >= len(c.days) {
		return "", false
	}
	return c.days[index], true
}
