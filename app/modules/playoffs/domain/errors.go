package playoffsdomain

import "errors"

var (
	ErrUnknownTeam   = errors.New("team is not seeded in this playoff")
	ErrDuplicateSeed = errors.New("duplicate playoff seed")
)
