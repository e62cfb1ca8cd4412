package persistence

import "errors"

// ErrBusy is returned when the backing store is locked by another writer.
var ErrBusy = errors.New("persistence: store busy")
