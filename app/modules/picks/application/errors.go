package picksservice

import "errors"

var (
	ErrGameSetNotFound = errors.New("gameset not found")
	ErrLeagueNotFound  = errors.New("league not found")
	ErrPickSetNotFound = errors.New("pickset not found")
)
