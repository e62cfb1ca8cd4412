// Package sqlite stores the booking collection in a SQLite database file using the
// pure Go modernc.org/sqlite driver. The schema is applied from embedded migrations
// when the store is opened.
package sqlite
