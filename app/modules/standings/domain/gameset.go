package standingsdomain

import (
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
)

// Entry is one pickset on a gameset leaderboard.
type Entry struct {
	PickSet     picksdomain.PickSet
	PointsDelta int
}

func (e Entry) Score() Score {
	return Score{Correct: e.PickSet.Correct, PointsDelta: e.PointsDelta}
}

// RankGameSet ranks picksets on their stored correct counts and their
// distance from the gameset's points.
func RankGameSet(picksets []picksdomain.PickSet, gs leaguedomain.GameSet) []Ranked[Entry] {
	entries := make([]Entry, 0, len(picksets))
	for _, ps := range picksets {
		entries = append(entries, Entry{PickSet: ps, PointsDelta: ps.PointsDelta(gs.Points)})
	}
	return RankStandings(entries, Entry.Score, nil)
}

// Grade recomputes correct and wrong for every pickset against gs, ranks
// them and flags the winners. The returned picksets are in input order.
func Grade(picksets []picksdomain.PickSet, gs leaguedomain.GameSet) ([]picksdomain.PickSet, []Ranked[Entry]) {
	graded := make([]picksdomain.PickSet, len(picksets))
	for i, ps := range picksets {
		ps.Correct, ps.Wrong = ps.Grade(gs)
		graded[i] = ps
	}

	ranked := RankGameSet(graded, gs)
	winners := make(map[int64]bool)
	for _, e := range Winners(ranked, gs.IsGraded()) {
		winners[e.PickSet.ID] = true
	}
	for i := range graded {
		graded[i].IsWinner = winners[graded[i].ID]
	}
	for i := range ranked {
		ranked[i].Item.PickSet.IsWinner = winners[ranked[i].Item.PickSet.ID]
	}
	return graded, ranked
}
