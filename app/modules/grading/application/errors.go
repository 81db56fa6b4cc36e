package gradingservice

import "errors"

var (
	ErrGameSetNotFound = errors.New("gameset not found")
	ErrLeagueNotFound  = errors.New("league not found")
	ErrNoGameSet       = errors.New("league has no gameset to grade")
)
