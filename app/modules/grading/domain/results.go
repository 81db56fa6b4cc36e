// Package gradingdomain decides game outcomes from a score provider payload.
package gradingdomain

import (
	"fmt"
	"strings"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
)

// Results is one gameset's worth of provider results.
type Results struct {
	Sequence int          `json:"sequence"`
	Season   int          `json:"season"`
	Games    []GameResult `json:"games"`
}

// GameResult is a provider's view of one game. Home and Away are team
// abbreviations; Winner is empty for a tie.
type GameResult struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Status    string `json:"status"`
	Winner    string `json:"winner"`
}

// IsFinal reports whether the provider considers the game over.
func (r GameResult) IsFinal() bool {
	return strings.HasPrefix(r.Status, "F")
}

func (r GameResult) Total() int {
	return r.HomeScore + r.AwayScore
}

// Check guards against applying another gameset's results.
func (r *Results) Check(gs leaguedomain.GameSet) error {
	if r == nil {
		return ErrResultsUnavailable
	}
	if r.Sequence != gs.Sequence || r.Season != gs.Season {
		return fmt.Errorf("%w: got %d/%d, want %d/%d", ErrResultsMismatch, r.Season, r.Sequence, gs.Season, gs.Sequence)
	}
	return nil
}

// Completed indexes the final games by home team abbreviation.
type Completed map[string]GameResult

func key(abbr string) string { return strings.ToUpper(strings.TrimSpace(abbr)) }

func (r *Results) Completed() Completed {
	out := make(Completed)
	if r == nil {
		return out
	}
	for _, g := range r.Games {
		if g.IsFinal() {
			out[key(g.Home)] = g
		}
	}
	return out
}

// For returns the final result reported for g's home team.
func (c Completed) For(g leaguedomain.Game) (GameResult, bool) {
	r, ok := c[key(g.Home.Abbr)]
	return r, ok
}

// WinnerFor maps a reported winner abbreviation onto g. Anything that is
// neither team is a tie.
func WinnerFor(g leaguedomain.Game, r GameResult) leaguedomain.WinnerRef {
	switch key(r.Winner) {
	case key(g.Home.Abbr):
		return leaguedomain.TeamWinner(g.Home.ID)
	case key(g.Away.Abbr):
		return leaguedomain.TeamWinner(g.Away.ID)
	default:
		return leaguedomain.TieWinner()
	}
}

// Apply decides every unplayed game of gs that has a final result and
// returns the games it changed. Decided games are left alone.
func Apply(gs *leaguedomain.GameSet, completed Completed) ([]leaguedomain.Game, error) {
	var changed []leaguedomain.Game
	for i := range gs.Games {
		g := &gs.Games[i]
		if g.Status != leaguedomain.StatusUnplayed {
			continue
		}
		r, ok := completed.For(*g)
		if !ok {
			continue
		}
		if err := g.SetWinner(WinnerFor(*g, r)); err != nil {
			return nil, err
		}
		home, away := r.HomeScore, r.AwayScore
		g.HomeScore, g.AwayScore = &home, &away
		changed = append(changed, *g)
	}
	return changed, nil
}

// FinalPoints returns the tiebreaker total once the gameset's last game has a
// winner and is over. A tied last game leaves points unset. Gamesets that
// already have points are never changed.
func FinalPoints(gs leaguedomain.GameSet, completed Completed, now time.Time, gameDuration time.Duration) (int, bool) {
	if gs.Points != 0 {
		return 0, false
	}
	last, ok := gs.LastGame()
	if !ok {
		return 0, false
	}
	if _, won := last.Winner(); !won {
		return 0, false
	}
	if !now.After(last.EndTime(gameDuration)) {
		return 0, false
	}
	r, ok := completed.For(last)
	if !ok {
		return 0, false
	}
	return r.Total(), true
}
