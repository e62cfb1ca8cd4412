package scheduler

import "strings"

// Status is the resolved display state of one grid cell.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
	StatusBreak       Status = "break"
)

// BreakInfo is the info text attached to break cells.
const BreakInfo = "Break period"

// rank orders statuses for Cell.Dominant.
func (s Status) rank() int {
	switch s {
	case StatusMaintenance:
		return 3
	case StatusOccupied:
		return 2
	case StatusBreak:
		return 1
	}
	return 0
}

// Slot is one fixed interval of the daily timetable.
type Slot struct {
	Label    string
	Interval Interval
	Break    bool
}

// Layout holds the static axes a grid is projected onto.
type Layout struct {
	Rooms []string
	Days  []string
	Slots []Slot
}

// Contribution records one booking that overlapped a cell.
type Contribution struct {
	BookingID string
	Status    Status
	Info      string
	// Applied is false when a break cell kept its status against an ordinary booking.
	Applied bool
}

// Cell is the resolved state of one (room, day, slot) position.
type Cell struct {
	Status       Status
	Info         string
	Contributors []Contribution
}

// Dominant returns the strongest status among the break flag and all contributors,
// regardless of iteration order: maintenance, occupied, break, available.
func (c Cell) Dominant() Status {
	best := StatusAvailable
	if c.Status == StatusBreak {
		best = StatusBreak
	}
	for _, contribution := range c.Contributors {
		if contribution.Status.rank() > best.rank() {
			best = contribution.Status
		}
	}
	return best
}

// Grid is the projected room x day x slot matrix.
type Grid struct {
	Rooms    []string
	Days     []string
	Slots    []Slot
	Excluded Exclusions

	roomIndex map[string]int
	dayIndex  map[string]int
	slotIndex map[string]int
	cells     [][][]Cell
}

// Cell returns the cell for a room, day and slot label. Day lookup is case-insensitive.
func (g *Grid) Cell(room, day, slot string) (Cell, bool) {
	if g == nil {
		return Cell{}, false
	}
	r, ok := g.roomIndex[strings.TrimSpace(room)]
	if !ok {
		return Cell{}, false
	}
	d, ok := g.dayIndex[NormalizeDay(day)]
	if !ok {
		return Cell{}, false
	}
	s, ok := g.slotIndex[slot]
	if !ok {
		return Cell{}, false
	}
	return cloneCell(g.cells[r][d][s]), true
}

// Row returns the cells of a room and day in slot order.
func (g *Grid) Row(room, day string) ([]Cell, bool) {
	if g == nil {
		return nil, false
	}
	r, ok := g.roomIndex[strings.TrimSpace(room)]
	if !ok {
		return nil, false
	}
	d, ok := g.dayIndex[NormalizeDay(day)]
	if !ok {
		return nil, false
	}
	row := make([]Cell, len(g.cells[r][d]))
	for i, cell := range g.cells[r][d] {
		row[i] = cloneCell(cell)
	}
	return row, true
}

// ProjectGrid classifies every cell of the layout from the bookings in iteration order.
//
// Break slots start as StatusBreak and only a maintenance booking replaces them.
// Elsewhere the last overlapping booking wins; earlier overlaps stay visible in
// Cell.Contributors. Bookings with blank or unparseable fields, unknown days or
// unknown rooms are skipped and counted in Grid.Excluded.
func ProjectGrid(bookings []Booking, layout Layout) *Grid {
	grid := newGrid(layout)

	for _, booking := range bookings {
		entry, reason, ok := resolve(booking)
		if !ok {
			grid.Excluded.add(reason)
			continue
		}
		d, ok := grid.dayIndex[entry.day]
		if !ok {
			grid.Excluded.add(ExcludedUnknownDay)
			continue
		}
		r, ok := grid.roomIndex[strings.TrimSpace(entry.booking.Room)]
		if !ok {
			grid.Excluded.add(ExcludedUnknownRoom)
			continue
		}

		status := StatusOccupied
		if entry.booking.IsMaintenance() {
			status = StatusMaintenance
		}
		info := entry.booking.info()

		row := grid.cells[r][d]
		for s, slot := range grid.Slots {
			if !Overlaps(entry.interval, slot.Interval) {
				continue
			}
			cell := &row[s]
			applied := cell.Status != StatusBreak || status == StatusMaintenance
			cell.Contributors = append(cell.Contributors, Contribution{
				BookingID: entry.booking.ID,
				Status:    status,
				Info:      info,
				Applied:   applied,
			})
			if applied {
				cell.Status = status
				cell.Info = info
			}
		}
	}

	return grid
}

func newGrid(layout Layout) *Grid {
	grid := &Grid{
		Rooms:     append([]string(nil), layout.Rooms...),
		Days:      make([]string, len(layout.Days)),
		Slots:     append([]Slot(nil), layout.Slots...),
		Excluded:  Exclusions{},
		roomIndex: make(map[string]int, len(layout.Rooms)),
		dayIndex:  make(map[string]int, len(layout.Days)),
		slotIndex: make(map[string]int, len(layout.Slots)),
	}
	for i, room := range grid.Rooms {
		grid.roomIndex[room] = i
	}
	for i, day := range layout.Days {
		grid.Days[i] = NormalizeDay(day)
		grid.dayIndex[grid.Days[i]] = i
	}
	for i, slot := range grid.Slots {
		grid.slotIndex[slot.Label] = i
	}

	grid.cells = make([][][]Cell, len(grid.Rooms))
	for r := range grid.Rooms {
		grid.cells[r] = make([][]Cell, len(grid.Days))
		for d := range grid.Days {
			row := make([]Cell, len(grid.Slots))
			for s, slot := range grid.Slots {
				row[s] = Cell{Status: StatusAvailable}
				if slot.Break {
					row[s] = Cell{Status: StatusBreak, Info: BreakInfo}
				}
			}
			grid.cells[r][d] = row
		}
	}
	return grid
}

func cloneCell(cell Cell) Cell {
	out := cell
	if len(cell.Contributors) > 0 {
		out.Contributors = append([]Contribution(nil), cell.Contributors...)
	}
	return out
}
