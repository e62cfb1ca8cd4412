package http

import (
	"strings"

	"github.com/example/room-scheduler/internal/scheduler"
)

type slotDTO struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
	Break bool   `json:"break"`
}

type contributionDTO struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	Info      string `json:"info"`
	Applied   bool   `json:"applied"`
}

type cellDTO struct {
	Slot         string            `json:"slot"`
	Status       string            `json:"status"`
	Info         string            `json:"info"`
	Dominant     string            `json:"dominant"`
	Contributors []contributionDTO `json:"contributors,omitempty"`
}

type gridRowDTO struct {
	Room  string    `json:"room"`
	Day   string    `json:"day"`
	Cells []cellDTO `json:"cells"`
}

type gridResponse struct {
	Rooms    []string       `json:"rooms"`
	Days     []string       `json:"days"`
	Slots    []slotDTO      `json:"slots"`
	Rows     []gridRowDTO   `json:"rows"`
	Excluded map[string]int `json:"excluded"`
}

type liveStatusResponse struct {
	Day              string         `json:"day"`
	Time             string         `json:"time"`
	Total            int            `json:"total"`
	Occupied         int            `json:"occupied"`
	Maintenance      int            `json:"maintenance"`
	Available        int            `json:"available"`
	OccupiedRooms    []string       `json:"occupied_rooms"`
	MaintenanceRooms []string       `json:"maintenance_rooms"`
	Excluded         map[string]int `json:"excluded"`
}

func toSlotDTOs(slots []scheduler.Slot) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotDTO{
			Label: slot.Label,
			Start: slot.Interval.Start.String(),
			End:   slot.Interval.End.String(),
			Break: slot.Break,
		})
	}
	return out
}

// toGridDTO flattens the grid into rows. An empty filter matches everything; ok is false
// when a non-empty filter names no room or day of the grid.
func toGridDTO(grid *scheduler.Grid, roomFilter, dayFilter string) (gridResponse, bool) {
	resp := gridResponse{Rows: []gridRowDTO{}, Excluded: map[string]int{}}
	if grid == nil {
		return resp, roomFilter == "" && dayFilter == ""
	}

	rooms := filterValues(grid.Rooms, roomFilter, strings.EqualFold)
	days := filterValues(grid.Days, dayFilter, func(a, b string) bool {
		return scheduler.NormalizeDay(a) == scheduler.NormalizeDay(b)
	})
	if (roomFilter != "" && len(rooms) == 0) || (dayFilter != "" && len(days) == 0) {
		return resp, false
	}

	resp.Rooms = rooms
	resp.Days = days
	resp.Slots = toSlotDTOs(grid.Slots)
	resp.Excluded = toExclusionDTO(grid.Excluded)
	for _, room := range rooms {
		for _, day := range days {
			row, ok := grid.Row(room, day)
			if !ok {
				continue
			}
			cells := make([]cellDTO, 0, len(row))
			for i, cell := range row {
				cells = append(cells, toCellDTO(grid.Slots[i].Label, cell))
			}
			resp.Rows = append(resp.Rows, gridRowDTO{Room: room, Day: day, Cells: cells})
		}
	}
	return resp, true
}

func filterValues(values []string, filter string, match func(a, b string) bool) []string {
	if filter == "" {
		return append([]string{}, values...)
	}
	var out []string
	for _, v := range values {
		if match(v, filter) {
			out = append(out, v)
		}
	}
	return out
}

func toCellDTO(label string, cell scheduler.Cell) cellDTO {
	dto := cellDTO{
		Slot:     label,
		Status:   string(cell.Status),
		Info:     cell.Info,
		Dominant: string(cell.Dominant()),
	}
	for _, c := range cell.Contributors {
		dto.Contributors = append(dto.Contributors, contributionDTO{
			BookingID: c.BookingID,
			Status:    string(c.Status),
			Info:      c.Info,
			Applied:   c.Applied,
		})
	}
	return dto
}

func toLiveStatusDTO(status scheduler.LiveStatus) liveStatusResponse {
	return liveStatusResponse{
		Day:              status.Day,
		Time:             status.Time.String(),
		Total:            status.Total,
		Occupied:         status.Occupied,
		Maintenance:      status.Maintenance,
		Available:        status.Available,
		OccupiedRooms:    nonNil(status.OccupiedRooms),
		MaintenanceRooms: nonNil(status.MaintenanceRooms),
		Excluded:         toExclusionDTO(status.Excluded),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
