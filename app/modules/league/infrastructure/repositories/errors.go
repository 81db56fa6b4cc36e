package leaguedb

import "errors"

var (
	// ErrNotFound is returned when a league, team, gameset or game does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoRowsAffected is returned when an update matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
)
