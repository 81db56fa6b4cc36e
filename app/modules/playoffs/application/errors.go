package playoffsservice

import "errors"

var (
	ErrPlayoffNotFound = errors.New("playoff not found")
	ErrLeagueNotFound  = errors.New("league not found")
)
