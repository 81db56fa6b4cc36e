package leaguedomain

import (
	"fmt"
	"strconv"
)

// WinnerRef names the side a pick or a result settles on: a team, a tie, or
// nothing yet. The zero value is undecided.
type WinnerRef struct {
	TeamID int64
	Tie    bool
}

func TeamWinner(teamID int64) WinnerRef { return WinnerRef{TeamID: teamID} }

func TieWinner() WinnerRef { return WinnerRef{Tie: true} }

func (w WinnerRef) IsZero() bool { return !w.Tie && w.TeamID == 0 }

// ParseWinnerRef decodes the wire form: "" is undecided, TieKey is a tie,
// anything else must be a team id.
func ParseWinnerRef(s string) (WinnerRef, error) {
	switch s {
	case "":
		return WinnerRef{}, nil
	case TieKey:
		return TieWinner(), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return WinnerRef{}, fmt.Errorf("%w: %q", ErrInvalidWinnerRef, s)
	}
	return TeamWinner(id), nil
}

func (w WinnerRef) String() string {
	switch {
	case w.Tie:
		return TieKey
	case w.TeamID != 0:
		return strconv.FormatInt(w.TeamID, 10)
	default:
		return ""
	}
}
