package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/room-scheduler/internal/persistence"
)

// ErrNoColumns is returned when the first row of a non-empty sheet has no known header.
var ErrNoColumns = errors.New("spreadsheet: no recognised columns in header row")

// ReadBookings reads bookings from the first sheet of an .xlsx workbook. The first
// row is the header; columns are matched by name and missing columns stay blank.
// Text cells are kept as written; only numeric cells in the time columns are
// rendered as HH:MM. Rows whose cells are all empty are skipped.
func ReadBookings(r io.Reader) ([]persistence.Booking, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []persistence.Booking{}, nil
	}

	mapping := make(map[int]int, len(rows[0]))
	for idx, header := range rows[0] {
		if col, ok := headerLookup[normalizeHeader(header)]; ok {
			mapping[idx] = col
		}
	}
	if len(mapping) == 0 {
		return nil, ErrNoColumns
	}

	bookings := []persistence.Booking{}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		var b persistence.Booking
		for idx, value := range row {
			col, ok := mapping[idx]
			if !ok {
				continue
			}
			if timeHeaders[columns[col].header] {
				numeric, err := numericCell(f, sheet, idx+1, i+2)
				if err != nil {
					return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
				}
				if numeric {
					value = clockFromDayFraction(value)
				}
			}
			columns[col].set(&b, value)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// numericCell reports whether the cell holds a number rather than text. Cells
// without an explicit type attribute are numbers in the workbook format.
func numericCell(f *excelize.File, sheet string, col, row int) (bool, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return false, err
	}
	return typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset, nil
}

func blankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// clockFromDayFraction renders spreadsheet time serials such as 0.2916 as HH:MM.
// Anything that is not a number is returned unchanged.
func clockFromDayFraction(value string) string {
	if value == "" || strings.Contains(value, ":") {
		return value
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 0 {
		return value
	}
	_, frac := math.Modf(serial)
	minutes := int(math.Round(frac * 24 * 60))
	if minutes == 24*60 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
