package standingsservice

import (
	"context"
	"log/slog"
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories/leaguefake"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories/picksfake"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*leaguefake.Repo, *picksfake.Repo, []*leaguedb.GameSet) {
	t.Helper()
	leagues := leaguefake.New()
	picks := picksfake.New(leagues)
	league := leagues.AddLeague(&leaguedb.League{Abbr: "NFL", Name: "NFL", Slug: "nfl", CurrentSeason: 2024})

	opens := time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC)
	var sets []*leaguedb.GameSet
	for i, pts := range []int{45, 0} {
		sets = append(sets, leagues.AddGameSet(&leaguedb.GameSet{
			LeagueID: league.ID, Season: 2024, Sequence: i + 1, Points: pts,
			Opens: opens.AddDate(0, 0, 7*i), Closes: opens.AddDate(0, 0, 7*i+7),
		}))
	}
	leagues.AddGameSet(&leaguedb.GameSet{LeagueID: league.ID, Season: 2023, Sequence: 1, Points: 30, Opens: opens.AddDate(-1, 0, 0)})

	picks.Seed(&picksdb.PickSet{UserID: "ann", GameSetID: sets[0].ID, Points: 40, Correct: 12, Wrong: 4, IsWinner: true})
	picks.Seed(&picksdb.PickSet{UserID: "ben", GameSetID: sets[0].ID, Points: 50, Correct: 12, Wrong: 4, IsWinner: true})
	picks.Seed(&picksdb.PickSet{UserID: "cat", GameSetID: sets[0].ID, Points: 45, Correct: 10, Wrong: 6})
	picks.Seed(&picksdb.PickSet{UserID: "cat", GameSetID: sets[1].ID, Points: 45, Correct: 3, Wrong: 0})
	return leagues, picks, sets
}

func TestStandingsService_GameSetStandings(t *testing.T) {
	leagues, picks, sets := seed(t)
	s := NewStandingsService(picks, leagues, slog.Default(), metrics.NewNoop(), nil, nil, leaguedomain.NewSettingsSource(nil))

	got, err := s.GameSetStandings(context.Background(), sets[0].ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 1, 3}, []int{got[0].Place, got[1].Place, got[2].Place})
	assert.Equal(t, "ann", got[0].Item.PickSet.UserID)
	assert.Equal(t, 5, got[0].Item.PointsDelta)
	assert.True(t, got[1].Item.PickSet.IsWinner)
	assert.Equal(t, "cat", got[2].Item.PickSet.UserID)

	_, err = s.GameSetStandings(context.Background(), 77777)
	assert.ErrorIs(t, err, ErrGameSetNotFound)
}

func TestStandingsService_SeasonStandings(t *testing.T) {
	leagues, picks, _ := seed(t)
	s := NewStandingsService(picks, leagues, slog.Default(), metrics.NewNoop(), nil, nil, leaguedomain.NewSettingsSource(nil))

	got, err := s.SeasonStandings(context.Background(), "NFL", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "cat", got[0].Item.UserID)
	assert.Equal(t, 13, got[0].Item.Correct)
	assert.Equal(t, 2, got[0].Item.WeeksPlayed)
	assert.Equal(t, 1, got[0].Place)
	assert.Equal(t, 2, got[1].Place)
	assert.Equal(t, 2, got[2].Place)
	assert.Equal(t, 1, got[1].Item.WeeksWon)

	_, err = s.SeasonStandings(context.Background(), "CFL", 0)
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}
