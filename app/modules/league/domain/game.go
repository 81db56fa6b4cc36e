package leaguedomain

import (
	"fmt"
	"time"
)

// GameStatus is stored as a single character.
type GameStatus string

const (
	StatusUnplayed  GameStatus = "U"
	StatusTie       GameStatus = "T"
	StatusHomeWin   GameStatus = "H"
	StatusAwayWin   GameStatus = "A"
	StatusCancelled GameStatus = "X"
)

func (s GameStatus) Valid() bool {
	switch s {
	case StatusUnplayed, StatusTie, StatusHomeWin, StatusAwayWin, StatusCancelled:
		return true
	}
	return false
}

// Game is one matchup inside a gameset. The winner is derived from Status.
type Game struct {
	ID        int64
	GameSetID int64
	Home      Team
	Away      Team
	StartTime time.Time
	HomeScore *int
	AwayScore *int
	Status    GameStatus
	Location  string
}

// HasStarted reports whether picks on g are locked.
func (g Game) HasStarted(now time.Time) bool {
	return !now.Before(g.StartTime)
}

func (g Game) EndTime(duration time.Duration) time.Time {
	return g.StartTime.Add(duration)
}

// Outcome returns the decided result of g. ok is false while the game is
// unplayed or was cancelled.
func (g Game) Outcome() (w WinnerRef, ok bool) {
	switch g.Status {
	case StatusHomeWin:
		return TeamWinner(g.Home.ID), true
	case StatusAwayWin:
		return TeamWinner(g.Away.ID), true
	case StatusTie:
		return TieWinner(), true
	case StatusUnplayed, StatusCancelled:
		return WinnerRef{}, false
	}
	return WinnerRef{}, false
}

// Winner returns the winning team, or false for ties and undecided games.
func (g Game) Winner() (Team, bool) {
	switch g.Status {
	case StatusHomeWin:
		return g.Home, true
	case StatusAwayWin:
		return g.Away, true
	}
	return Team{}, false
}

// SetWinner is the only way a game's result changes. w must be a tie or one
// of the two teams playing.
func (g *Game) SetWinner(w WinnerRef) error {
	switch {
	case w.Tie:
		g.Status = StatusTie
	case w.TeamID != 0 && w.TeamID == g.Home.ID:
		g.Status = StatusHomeWin
	case w.TeamID != 0 && w.TeamID == g.Away.ID:
		g.Status = StatusAwayWin
	default:
		return fmt.Errorf("%w: team %d in game %d (%s@%s)", ErrInvalidWinner, w.TeamID, g.ID, g.Away.Abbr, g.Home.Abbr)
	}
	return nil
}

// Involves reports whether teamID plays in g.
func (g Game) Involves(teamID int64) bool {
	return teamID == g.Home.ID || teamID == g.Away.ID
}

func (g Game) ShortDescription() string {
	return g.Away.Abbr + " @ " + g.Home.Abbr
}
