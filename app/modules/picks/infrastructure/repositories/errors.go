package picksdb

import "errors"

var (
	// ErrNotFound is returned when a pickset, preference or group does not exist.
	ErrNotFound       = errors.New("not found")
	ErrNoRowsAffected = errors.New("no rows affected")
)
