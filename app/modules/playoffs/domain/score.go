package playoffsdomain

import (
	"cmp"
	"fmt"
	"slices"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
)

// Entry is one user's bracket.
type Entry struct {
	UserID string
	Picks  BracketPicks
}

// SlotResult is the points a slot earned and the team picked for it.
type SlotResult struct {
	Points int
	Team   *leaguedomain.Team
}

type Result struct {
	UserID string
	Score  int
	// Delta is minus the distance from the admin's points; closer is larger.
	Delta int
	Picks BracketPicks
	Slots [BracketSlots]SlotResult
}

// BracketScore compares user against the admin bracket. Slot i (1-based)
// earns weights[i], or 1 when unweighted, iff both picks are set and equal.
func BracketScore(admin, user BracketPicks, weights map[int]int) (score, delta int, slots [BracketSlots]int) {
	for i := range BracketSlots {
		a, u := admin.Teams[i], user.Teams[i]
		if a == "" || u == "" || a != u {
			continue
		}
		w, ok := weights[i+1]
		if !ok {
			w = 1
		}
		slots[i] = w
		score += w
	}
	delta = -abs(admin.Points - user.Points)
	return score, delta, slots
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ScorePlayoff scores every entry against admin, best first by (score,
// delta), then by user. A pick naming an unseeded team is
// an error.
func ScorePlayoff(admin BracketPicks, entries []Entry, teams map[string]leaguedomain.Team, weights map[int]int) ([]Result, error) {
	out := make([]Result, 0, len(entries))
	for _, e := range entries {
		score, delta, points := BracketScore(admin, e.Picks, weights)
		r := Result{UserID: e.UserID, Score: score, Delta: delta, Picks: e.Picks}
		for i, abbr := range e.Picks.Teams {
			r.Slots[i].Points = points[i]
			if abbr == "" {
				continue
			}
			team, ok := teams[abbr]
			if !ok {
				return nil, fmt.Errorf("%w: %q picked by %s", ErrUnknownTeam, abbr, e.UserID)
			}
			r.Slots[i].Team = &team
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Delta, a.Delta); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out, nil
}
