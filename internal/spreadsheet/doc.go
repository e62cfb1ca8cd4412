// Package spreadsheet converts booking collections and projected grids to and from
// .xlsx workbooks. Imported values are kept as text; interpretation is left to the
// scheduler.
package spreadsheet
