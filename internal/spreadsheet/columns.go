package spreadsheet

import (
	"strings"
	"time"

	"github.com/example/room-scheduler/internal/persistence"
)

// column binds one workbook column to a booking field.
type column struct {
	header  string
	aliases []string
	value   func(b persistence.Booking) string
	set     func(b *persistence.Booking, v string)
}

func textColumn(header string, field func(b *persistence.Booking) *string, aliases ...string) column {
	return column{
		header:  header,
		aliases: aliases,
		value:   func(b persistence.Booking) string { return *field(&b) },
		set:     func(b *persistence.Booking, v string) { *field(b) = v },
	}
}

// Columns are written in this order. The headers match the workbooks the schedule
// was originally kept in, plus Jenis and Dibuat.
var columns = []column{
	textColumn("ID", func(b *persistence.Booking) *string { return &b.ID }, "id", "booking id"),
	textColumn("Dosen", func(b *persistence.Booking) *string { return &b.Instructor }, "instructor", "lecturer"),
	textColumn("Mata Kuliah", func(b *persistence.Booking) *string { return &b.CourseName }, "course", "course name", "course_name"),
	textColumn("SKS", func(b *persistence.Booking) *string { return &b.Credits }, "credits"),
	textColumn("Kelas", func(b *persistence.Booking) *string { return &b.Section }, "section"),
	textColumn("Hari", func(b *persistence.Booking) *string { return &b.Day }, "day"),
	textColumn("Jam Mulai", func(b *persistence.Booking) *string { return &b.StartTime }, "start", "start time", "start_time"),
	textColumn("Jam Selesai", func(b *persistence.Booking) *string { return &b.EndTime }, "end", "end time", "end_time"),
	textColumn("Gedung", func(b *persistence.Booking) *string { return &b.Building }, "building"),
	textColumn("Lantai", func(b *persistence.Booking) *string { return &b.Floor }, "floor"),
	textColumn("Ruangan", func(b *persistence.Booking) *string { return &b.Room }, "room"),
	textColumn("Tipe Kelas", func(b *persistence.Booking) *string { return &b.ClassType }, "class type", "class_type", "type"),
	textColumn("Jenis", func(b *persistence.Booking) *string { return &b.Kind }, "kind"),
	{
		header:  "Dibuat",
		aliases: []string{"created", "created at", "created_at"},
		value: func(b persistence.Booking) string {
			if b.CreatedAt.IsZero() {
				return ""
			}
			return b.CreatedAt.UTC().Format(time.RFC3339Nano)
		},
		// Unparseable timestamps are dropped; the row itself is still imported.
		set: func(b *persistence.Booking, v string) {
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
				b.CreatedAt = t
			}
		},
	},
}

// timeHeaders name the columns whose numeric cells are fractions of a day.
var timeHeaders = map[string]bool{"Jam Mulai": true, "Jam Selesai": true}

var headerLookup = func() map[string]int {
	lookup := make(map[string]int)
	for i, c := range columns {
		lookup[normalizeHeader(c.header)] = i
		for _, alias := range c.aliases {
			lookup[normalizeHeader(alias)] = i
		}
	}
	return lookup
}()

func normalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(header)), " ")
}
