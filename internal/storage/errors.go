package storage

import "errors"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("storage: not found")
