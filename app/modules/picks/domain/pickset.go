package picksdomain

import (
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
)

// PickSet is one user's entry for one gameset.
type PickSet struct {
	ID        int64
	UserID    string
	GameSetID int64
	Strategy  Strategy
	Points    int
	Correct   int
	Wrong     int
	IsWinner  bool
	Created   time.Time
	Updated   time.Time
	Picks     []GamePick
}

// GamePick is the winner chosen for one game. A zero Winner is undecided.
type GamePick struct {
	ID        int64
	PickSetID int64
	GameID    int64
	Winner    leaguedomain.WinnerRef
}

// PointsDelta is the distance of the guess from the actual tiebreaker.
// It is 0 until the gameset has been graded.
func (ps PickSet) PointsDelta(actual int) int {
	if actual == 0 {
		return 0
	}
	d := ps.Points - actual
	if d < 0 {
		return -d
	}
	return d
}

// Pick returns the pick for gameID.
func (ps PickSet) Pick(gameID int64) (GamePick, bool) {
	for _, p := range ps.Picks {
		if p.GameID == gameID {
			return p, true
		}
	}
	return GamePick{}, false
}

// Progress counts decided picks.
func (ps PickSet) Progress() int {
	n := 0
	for _, p := range ps.Picks {
		if !p.Winner.IsZero() {
			n++
		}
	}
	return n
}

// IsComplete reports whether every game has a pick and a points guess was made.
func (ps PickSet) IsComplete(games int) bool {
	return ps.Points != 0 && ps.Progress() == games
}

// Grade counts picks matching decided games. Every other pick is wrong,
// including picks on games not yet decided.
func (ps PickSet) Grade(gs leaguedomain.GameSet) (correct, wrong int) {
	for _, p := range ps.Picks {
		g, ok := gs.Game(p.GameID)
		if !ok {
			continue
		}
		if outcome, decided := g.Outcome(); decided && !p.Winner.IsZero() && p.Winner == outcome {
			correct++
			continue
		}
		wrong++
	}
	return correct, wrong
}

// ValidatePick checks that w can be recorded for g.
func ValidatePick(g leaguedomain.Game, w leaguedomain.WinnerRef, allowTies bool) error {
	switch {
	case w.IsZero():
		return nil
	case w.Tie:
		if !allowTies {
			return ErrTiesNotAllowed
		}
		return nil
	case g.Involves(w.TeamID):
		return nil
	}
	return ErrWinnerNotInGame
}
