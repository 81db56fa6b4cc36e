package leagueservice

import "errors"

var (
	ErrLeagueNotFound   = errors.New("league not found")
	ErrGameSetNotFound  = errors.New("gameset not found")
	ErrNoCurrentGameSet = errors.New("league has no current gameset")
	// ErrUnknownTeam is returned when a schedule names a team the league does not have.
	ErrUnknownTeam = errors.New("unknown team")
)
