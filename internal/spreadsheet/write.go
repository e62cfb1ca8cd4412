package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/scheduler"
)

// BookingsSheet names the sheet written by WriteBookings.
const BookingsSheet = "Jadwal"

var statusFills = map[scheduler.Status]string{
	scheduler.StatusAvailable:   "#C6EFCE",
	scheduler.StatusOccupied:    "#FFC7CE",
	scheduler.StatusMaintenance: "#FFEB9C",
	scheduler.StatusBreak:       "#D9D9D9",
}

// WriteBookings writes bookings to a single sheet in the fixed column order.
func WriteBookings(w io.Writer, bookings []persistence.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), BookingsSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	if err := f.SetSheetRow(BookingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(BookingsSheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(BookingsSheet, "A", last, 16); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}

	for i := range bookings {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = c.value(bookings[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(BookingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteGrid writes one sheet per day with rooms as rows and slots as columns. Each
// cell shows the booking info, or the status when there is none, and is filled by
// status.
func WriteGrid(w io.Writer, grid *scheduler.Grid) error {
	if grid == nil || len(grid.Days) == 0 {
		return fmt.Errorf("write grid: grid has no days")
	}

	f := excelize.NewFile()
	defer f.Close()

	styles := make(map[scheduler.Status]int, len(statusFills))
	for status, color := range statusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "center"},
		})
		if err != nil {
			return fmt.Errorf("create %s style: %w", status, err)
		}
		styles[status] = id
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for d, day := range grid.Days {
		if d == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), day); err != nil {
				return fmt.Errorf("name sheet %s: %w", day, err)
			}
		} else if _, err := f.NewSheet(day); err != nil {
			return fmt.Errorf("create sheet %s: %w", day, err)
		}

		header := make([]any, 0, len(grid.Slots)+1)
		header = append(header, "Ruangan")
		for _, slot := range grid.Slots {
			header = append(header, slot.Label)
		}
		if err := f.SetSheetRow(day, "A1", &header); err != nil {
			return fmt.Errorf("write %s header: %w", day, err)
		}
		last, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return fmt.Errorf("%s header range: %w", day, err)
		}
		if err := f.SetCellStyle(day, "A1", last+"1", headerStyle); err != nil {
			return fmt.Errorf("style %s header: %w", day, err)
		}
		if err := f.SetColWidth(day, "A", "A", 12); err != nil {
			return fmt.Errorf("size %s columns: %w", day, err)
		}
		if err := f.SetColWidth(day, "B", last, 22); err != nil {
			return fmt.Errorf("size %s columns: %w", day, err)
		}

		for r, room := range grid.Rooms {
			cells, ok := grid.Row(room, day)
			if !ok {
				continue
			}
			rowNum := r + 2
			roomCell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return fmt.Errorf("write room %s: %w", room, err)
			}
			if err := f.SetCellValue(day, roomCell, room); err != nil {
				return fmt.Errorf("write room %s: %w", room, err)
			}
			for s, cell := range cells {
				name, err := excelize.CoordinatesToCellName(s+2, rowNum)
				if err != nil {
					return fmt.Errorf("write %s cell: %w", room, err)
				}
				text := cell.Info
				if text == "" {
					text = string(cell.Status)
				}
				if err := f.SetCellValue(day, name, text); err != nil {
					return fmt.Errorf("write cell %s: %w", name, err)
				}
				if style, ok := styles[cell.Status]; ok {
					if err := f.SetCellStyle(day, name, name, style); err != nil {
						return fmt.Errorf("style cell %s: %w", name, err)
					}
				}
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
