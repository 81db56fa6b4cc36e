package standingsdomain

import (
	"testing"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	huf, grf := leaguedomain.Team{ID: 1, Abbr: "HUF"}, leaguedomain.Team{ID: 2, Abbr: "GRF"}
	rvn, sly := leaguedomain.Team{ID: 3, Abbr: "RVN"}, leaguedomain.Team{ID: 4, Abbr: "SLY"}
	gs := leaguedomain.GameSet{
		Points: 30,
		Games: []leaguedomain.Game{
			{ID: 10, Home: huf, Away: grf, Status: leaguedomain.StatusHomeWin},
			{ID: 11, Home: rvn, Away: sly, Status: leaguedomain.StatusAwayWin},
		},
	}
	picks := func(a, b int64) []picksdomain.GamePick {
		return []picksdomain.GamePick{
			{GameID: 10, Winner: leaguedomain.TeamWinner(a)},
			{GameID: 11, Winner: leaguedomain.TeamWinner(b)},
		}
	}
	picksets := []picksdomain.PickSet{
		{ID: 1, UserID: "u1", Points: 28, Picks: picks(1, 4), IsWinner: true},
		{ID: 2, UserID: "u2", Points: 32, Picks: picks(1, 4)},
		{ID: 3, UserID: "u3", Points: 30, Picks: picks(2, 4)},
	}

	graded, ranked := Grade(picksets, gs)

	assert.Equal(t, []int{2, 2, 1}, []int{graded[0].Correct, graded[1].Correct, graded[2].Correct})
	assert.Equal(t, 1, graded[2].Wrong)
	assert.True(t, graded[0].IsWinner)
	assert.True(t, graded[1].IsWinner)
	assert.False(t, graded[2].IsWinner)

	assert.Equal(t, 1, ranked[0].Place)
	assert.Equal(t, 1, ranked[1].Place)
	assert.Equal(t, 3, ranked[2].Place)
	assert.Equal(t, "u3", ranked[2].Item.PickSet.UserID)
	assert.Equal(t, 2, ranked[0].Item.PointsDelta)

	t.Run("ungraded gameset clears winners", func(t *testing.T) {
		gs.Points = 0
		graded, _ := Grade(picksets, gs)
		for _, ps := range graded {
			assert.False(t, ps.IsWinner, ps.UserID)
		}
	})
}
