package gradingdomain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	huf = leaguedomain.Team{ID: 1, Abbr: "HUF"}
	grf = leaguedomain.Team{ID: 2, Abbr: "GRF"}
	rvn = leaguedomain.Team{ID: 3, Abbr: "RVN"}
	sly = leaguedomain.Team{ID: 4, Abbr: "SLY"}

	kickoff = time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)
)

func gameset() leaguedomain.GameSet {
	return leaguedomain.GameSet{
		ID: 9, Season: 2024, Sequence: 1,
		Games: []leaguedomain.Game{
			{ID: 10, Home: huf, Away: grf, StartTime: kickoff, Status: leaguedomain.StatusUnplayed},
			{ID: 11, Home: sly, Away: rvn, StartTime: kickoff.Add(3 * time.Hour), Status: leaguedomain.StatusUnplayed},
		},
	}
}

const payload = `{"sequence": 1, "season": 2024, "games": [
	{"home": "HUF", "away": "GRF", "home_score": 24, "away_score": 17, "status": "Final", "winner": "HUF"},
	{"home": "SLY", "away": "RVN", "home_score": 0, "away_score": 0, "status": "Scheduled", "winner": ""}
]}`

func TestResultsCheck(t *testing.T) {
	gs := gameset()
	tests := []struct {
		name    string
		results *Results
		wantErr error
	}{
		{"nil", nil, ErrResultsUnavailable},
		{"match", &Results{Season: 2024, Sequence: 1}, nil},
		{"wrong sequence", &Results{Season: 2024, Sequence: 2}, ErrResultsMismatch},
		{"wrong season", &Results{Season: 2023, Sequence: 1}, ErrResultsMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.results.Check(gs)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Check = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Scenario: GRF@HUF is final with HUF winning, RVN@SLY has not been played.
func TestApply_OnlyFinalHomeKeyedGames(t *testing.T) {
	var res Results
	require.NoError(t, json.Unmarshal([]byte(payload), &res))

	gs := gameset()
	changed, err := Apply(&gs, res.Completed())
	require.NoError(t, err)

	require.Len(t, changed, 1)
	assert.Equal(t, int64(10), changed[0].ID)
	assert.Equal(t, leaguedomain.StatusHomeWin, gs.Games[0].Status)
	assert.Equal(t, 24, *gs.Games[0].HomeScore)
	assert.Equal(t, leaguedomain.StatusUnplayed, gs.Games[1].Status)

	again, err := Apply(&gs, res.Completed())
	require.NoError(t, err)
	assert.Empty(t, again, "decided games are not re-applied")
}

func TestApply_AwayKeyedResultIsIgnored(t *testing.T) {
	gs := gameset()
	res := &Results{Season: 2024, Sequence: 1, Games: []GameResult{
		{Home: "GRF", Away: "HUF", Status: "Final", Winner: "GRF"},
	}}
	changed, err := Apply(&gs, res.Completed())
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestWinnerFor(t *testing.T) {
	g := gameset().Games[0]
	tests := []struct {
		winner string
		want   leaguedomain.WinnerRef
	}{
		{"HUF", leaguedomain.TeamWinner(huf.ID)},
		{"grf", leaguedomain.TeamWinner(grf.ID)},
		{"", leaguedomain.TieWinner()},
		{"RVN", leaguedomain.TieWinner()},
	}
	for _, tt := range tests {
		if got := WinnerFor(g, GameResult{Winner: tt.winner}); got != tt.want {
			t.Errorf("WinnerFor(%q) = %v, want %v", tt.winner, got, tt.want)
		}
	}
}

func TestFinalPoints(t *testing.T) {
	completed := Completed{
		"SLY": {Home: "SLY", Away: "RVN", HomeScore: 21, AwayScore: 20, Status: "Final", Winner: "SLY"},
	}
	decided := func() leaguedomain.GameSet {
		gs := gameset()
		gs.Games[1].Status = leaguedomain.StatusHomeWin
		return gs
	}
	end := kickoff.Add(3*time.Hour + 4*time.Hour)

	tests := []struct {
		name   string
		gs     leaguedomain.GameSet
		now    time.Time
		want   int
		wantOK bool
	}{
		{"after end", decided(), end.Add(time.Minute), 41, true},
		{"before end", decided(), end.Add(-time.Minute), 0, false},
		{"undecided", gameset(), end.Add(time.Hour), 0, false},
		{"already graded", func() leaguedomain.GameSet { gs := decided(); gs.Points = 30; return gs }(), end.Add(time.Hour), 0, false},
		{"tied last game", func() leaguedomain.GameSet {
			gs := gameset()
			gs.Games[1].Status = leaguedomain.StatusTie
			return gs
		}(), end.Add(time.Hour), 0, false},
		{"cancelled last game", func() leaguedomain.GameSet {
			gs := gameset()
			gs.Games[1].Status = leaguedomain.StatusCancelled
			return gs
		}(), end.Add(time.Hour), 0, false},
		{"no games", leaguedomain.GameSet{}, end, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FinalPoints(tt.gs, completed, tt.now, 4*time.Hour)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
