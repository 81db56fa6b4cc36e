package leaguedomain

import "errors"

var (
	// ErrInvalidWinner is returned when a winner is neither the home nor the away team.
	ErrInvalidWinner = errors.New("winner must be the home or away team")
	// ErrInvalidAbbr is returned for empty team abbreviations or ones using the reserved prefix.
	ErrInvalidAbbr = errors.New("invalid team abbreviation")
	// ErrTeamNotInLeague is returned when a team is referenced under a league it does not belong to.
	ErrTeamNotInLeague = errors.New("team does not belong to league")
	// ErrInvalidWinnerRef is returned when a winner reference cannot be parsed.
	ErrInvalidWinnerRef = errors.New("invalid winner reference")
)
