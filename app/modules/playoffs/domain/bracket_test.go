package playoffsdomain

import (
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseBracketPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]string
		want    BracketPicks
	}{
		{
			name:    "full slots",
			payload: map[string]string{"game_1": "grf", "game_11": " RVN ", "points": "47", "extra": "x"},
			want:    BracketPicks{Teams: [BracketSlots]string{0: "GRF", 10: "RVN"}, Points: 47},
		},
		{
			name:    "non-digit points",
			payload: map[string]string{"points": "4x"},
			want:    BracketPicks{},
		},
		{
			name:    "negative points",
			payload: map[string]string{"points": "-3"},
			want:    BracketPicks{},
		},
		{
			name:    "empty",
			payload: nil,
			want:    BracketPicks{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseBracketPayload(tt.payload)); diff != "" {
				t.Errorf("ParseBracketPayload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBracketPicks_PayloadAndRounds(t *testing.T) {
	b := BracketPicks{Teams: [BracketSlots]string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}, Points: 9}
	assert.Equal(t, b, ParseBracketPayload(b.Payload()))

	rounds := b.Rounds()
	assert.Equal(t, [][]string{{"A", "B", "C", "D"}, {"E", "F", "G", "H"}, {"I", "J"}, {"K"}}, rounds)
}

// Scenario: the user matches slot 1 and the final only.
func TestBracketScore_Weights(t *testing.T) {
	admin := BracketPicks{Teams: [BracketSlots]string{"GRF", "RVN", "HUF", "SLY", "GRF", "HUF", "RVN", "SLY", "GRF", "SLY", "GRF"}, Points: 40}
	user := BracketPicks{Teams: [BracketSlots]string{"GRF", "SLY", "", "RVN", "", "", "", "", "RVN", "", "GRF"}, Points: 47}

	score, delta, slots := BracketScore(admin, user, leaguedomain.DefaultPlayoffScore())
	assert.Equal(t, 5, score)
	assert.Equal(t, -7, delta)
	assert.Equal(t, [BracketSlots]int{0: 1, 10: 4}, slots)

	score, _, _ = BracketScore(admin, user, map[int]int{})
	assert.Equal(t, 2, score, "unweighted slots are worth 1")
}

func TestBracketScore_EmptyNeverMatches(t *testing.T) {
	score, delta, _ := BracketScore(BracketPicks{}, BracketPicks{}, nil)
	assert.Equal(t, 0, score)
	assert.Equal(t, 0, delta)
}

func TestPlayoff(t *testing.T) {
	east, west := int64(1), int64(2)
	p := Playoff{
		Kickoff: time.Date(2025, 1, 11, 18, 0, 0, 0, time.UTC),
		Seeds: []Seed{
			{Seed: 2, Team: leaguedomain.Team{ID: 10, Abbr: "GRF", ConferenceID: &east}},
			{Seed: 1, Team: leaguedomain.Team{ID: 11, Abbr: "HUF", ConferenceID: &east}},
			{Seed: 1, Team: leaguedomain.Team{ID: 12, Abbr: "RVN", ConferenceID: &west}},
		},
	}
	assert.False(t, p.HasStarted(p.Kickoff))
	assert.True(t, p.HasStarted(p.Kickoff.Add(time.Second)))

	byConf := p.SeedsByConference()
	assert.Equal(t, "HUF", byConf[east][0].Team.Abbr)
	assert.Len(t, byConf[west], 1)
	assert.NoError(t, ValidateSeeds(p.Seeds))

	dup := append(p.Seeds, Seed{Seed: 1, Team: leaguedomain.Team{ID: 13, Abbr: "SLY", ConferenceID: &west}})
	assert.ErrorIs(t, ValidateSeeds(dup), ErrDuplicateSeed)

	teams := p.Teams()
	assert.NoError(t, BracketPicks{Teams: [BracketSlots]string{"GRF"}}.Validate(teams))
	assert.ErrorIs(t, BracketPicks{Teams: [BracketSlots]string{3: "SLY"}}.Validate(teams), ErrUnknownTeam)
}
