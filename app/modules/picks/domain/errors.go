package picksdomain

import "errors"

var (
	ErrInvalidStrategy  = errors.New("invalid pick strategy")
	ErrInvalidAutopick  = errors.New("invalid autopick preference")
	ErrTiesNotAllowed   = errors.New("ties are not allowed in this league")
	ErrGameNotInGameSet = errors.New("game is not part of the gameset")
	// ErrWinnerNotInGame is returned for a pick naming a team that does not play in the game.
	ErrWinnerNotInGame = errors.New("picked team does not play in the game")
	ErrUnknownHook     = errors.New("unknown participation hook")
)
