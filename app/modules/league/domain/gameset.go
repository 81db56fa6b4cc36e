package leaguedomain

import (
	"cmp"
	"slices"
	"time"
)

// DefaultGameSetDuration closes a gameset one second before the next would open.
const DefaultGameSetDuration = 7*24*time.Hour - time.Second

// GameSet is one scored round of a season.
type GameSet struct {
	ID       int64
	LeagueID int64
	Season   int
	Sequence int
	Opens    time.Time
	Closes   time.Time
	Points   int
	Games    []Game
	Byes     []Team
}

// SortGames orders games chronologically, breaking ties by away abbreviation.
func SortGames(games []Game) {
	slices.SortStableFunc(games, func(a, b Game) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.Away.Abbr, b.Away.Abbr)
	})
}

// LastGame is the chronologically last game. Games need not be pre-sorted.
func (gs GameSet) LastGame() (Game, bool) {
	if len(gs.Games) == 0 {
		return Game{}, false
	}
	last := gs.Games[0]
	for _, g := range gs.Games[1:] {
		if !g.StartTime.Before(last.StartTime) {
			last = g
		}
	}
	return last, true
}

func (gs GameSet) FirstGame() (Game, bool) {
	if len(gs.Games) == 0 {
		return Game{}, false
	}
	first := gs.Games[0]
	for _, g := range gs.Games[1:] {
		if g.StartTime.Before(first.StartTime) {
			first = g
		}
	}
	return first, true
}

// Game finds a game by id.
func (gs GameSet) Game(id int64) (Game, bool) {
	for _, g := range gs.Games {
		if g.ID == id {
			return g, true
		}
	}
	return Game{}, false
}

// Contains reports whether now falls in [Opens, Closes).
func (gs GameSet) Contains(now time.Time) bool {
	return !now.Before(gs.Opens) && now.Before(gs.Closes)
}

// HasStarted reports whether the first game has kicked off.
func (gs GameSet) HasStarted(now time.Time) bool {
	first, ok := gs.FirstGame()
	return ok && first.HasStarted(now)
}

// IsOpen reports whether any game can still be picked.
func (gs GameSet) IsOpen(now time.Time) bool {
	last, ok := gs.LastGame()
	return ok && !last.HasStarted(now)
}

// IsGraded reports whether the tiebreaker points have been recorded.
func (gs GameSet) IsGraded() bool { return gs.Points != 0 }

// CurrentGameSet picks the gameset whose window contains now; failing that
// the earliest upcoming ungraded one; failing that the most recently closed.
func CurrentGameSet(sets []GameSet, now time.Time) (GameSet, bool) {
	var (
		upcoming, closed       GameSet
		haveUpcoming, haveLast bool
	)
	for _, gs := range sets {
		switch {
		case gs.Contains(now):
			return gs, true
		case gs.Points == 0 && !gs.Opens.Before(now):
			if !haveUpcoming || gs.Opens.Before(upcoming.Opens) {
				upcoming, haveUpcoming = gs, true
			}
		case !gs.Closes.After(now):
			if !haveLast || gs.Closes.After(closed.Closes) {
				closed, haveLast = gs, true
			}
		}
	}
	if haveUpcoming {
		return upcoming, true
	}
	return closed, haveLast
}
