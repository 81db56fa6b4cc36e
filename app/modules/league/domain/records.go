package leaguedomain

// TeamRecord is a team's win/loss/tie tally over a season.
type TeamRecord struct {
	Wins   int
	Losses int
	Ties   int
}

// SeasonPoints weighs a win as 2 and a tie as 1.
func (r TeamRecord) SeasonPoints() int {
	return r.Wins*2 + r.Ties
}

// TallyRecords builds per-team records from decided games.
func TallyRecords(games []Game) map[int64]TeamRecord {
	records := make(map[int64]TeamRecord)
	for _, g := range games {
		home, away := records[g.Home.ID], records[g.Away.ID]
		switch g.Status {
		case StatusHomeWin:
			home.Wins++
			away.Losses++
		case StatusAwayWin:
			away.Wins++
			home.Losses++
		case StatusTie:
			home.Ties++
			away.Ties++
		case StatusUnplayed, StatusCancelled:
			continue
		}
		records[g.Home.ID], records[g.Away.ID] = home, away
	}
	return records
}
