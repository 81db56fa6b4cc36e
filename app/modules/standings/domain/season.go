package standingsdomain

import (
	"cmp"
	"slices"
)

// SeasonRow is one graded pickset with its gameset's tiebreaker points.
type SeasonRow struct {
	UserID        string
	Correct       int
	Wrong         int
	Points        int
	GameSetPoints int
	IsWinner      bool
}

// SeasonEntry aggregates one user's picksets over a season.
type SeasonEntry struct {
	UserID      string
	Correct     int
	Wrong       int
	PointsDelta int
	WeeksPlayed int
	WeeksWon    int
}

func (e SeasonEntry) Score() Score {
	return Score{Correct: e.Correct, PointsDelta: e.PointsDelta}
}

// Pct is the share of correct picks, in percent.
func (e SeasonEntry) Pct() float64 {
	if e.Correct+e.Wrong == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Correct+e.Wrong) * 100
}

func (e SeasonEntry) AvgPointsDelta() float64 {
	if e.WeeksPlayed == 0 {
		return 0
	}
	return float64(e.PointsDelta) / float64(e.WeeksPlayed)
}

// AggregateSeason sums rows per user. Picksets with nothing graded yet do
// not count as a week played.
func AggregateSeason(rows []SeasonRow) []SeasonEntry {
	byUser := make(map[string]*SeasonEntry)
	var order []string
	for _, r := range rows {
		e, ok := byUser[r.UserID]
		if !ok {
			e = &SeasonEntry{UserID: r.UserID}
			byUser[r.UserID] = e
			order = append(order, r.UserID)
		}
		if r.IsWinner {
			e.WeeksWon++
		}
		if r.Correct == 0 && r.Wrong == 0 {
			continue
		}
		e.WeeksPlayed++
		e.Correct += r.Correct
		e.Wrong += r.Wrong
		if r.GameSetPoints != 0 {
			d := r.Points - r.GameSetPoints
			if d < 0 {
				d = -d
			}
			e.PointsDelta += d
		}
	}

	slices.Sort(order)
	out := make([]SeasonEntry, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	return out
}

// RankSeason orders by correct desc, points delta asc, weeks played desc.
func RankSeason(entries []SeasonEntry) []Ranked[SeasonEntry] {
	return RankStandings(entries, SeasonEntry.Score, func(a, b SeasonEntry) int {
		if c := ByScore(a.Score(), b.Score()); c != 0 {
			return c
		}
		return cmp.Compare(b.WeeksPlayed, a.WeeksPlayed)
	})
}
