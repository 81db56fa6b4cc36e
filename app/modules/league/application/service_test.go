package leagueservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories/leaguefake"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kickoff = time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)

func newTestService(repo *leaguefake.Repo, now time.Time, picker map[string]any) *LeagueService {
	clk := clock.NewMock()
	clk.Set(now)
	return NewLeagueService(repo, slog.Default(), metrics.NewNoop(), nil, nil, clk, leaguedomain.NewSettingsSource(picker))
}

func seedLeague(repo *leaguefake.Repo) (*leaguedb.League, *leaguedb.Team, *leaguedb.Team) {
	league := repo.AddLeague(&leaguedb.League{Abbr: "NFL", Name: "National Football League", Slug: "nfl", CurrentSeason: 2024, AvgGameDuration: 240})
	home := repo.AddTeam(&leaguedb.Team{LeagueID: league.ID, Abbr: "GB", Name: "Green Bay", Nickname: "Packers"})
	away := repo.AddTeam(&leaguedb.Team{LeagueID: league.ID, Abbr: "CHI", Name: "Chicago", Nickname: "Bears"})
	return league, home, away
}

func TestLeagueService_GetLeague(t *testing.T) {
	tests := []struct {
		name      string
		abbr      string
		picker    map[string]any
		expectErr error
		check     func(t *testing.T, l leaguedomain.League)
	}{
		{
			name: "binds layered settings",
			abbr: "nfl",
			picker: map[string]any{
				"NFL":   map[string]any{"ALLOW_TIES": true},
				"_BASE": map[string]any{"FORCE_AUTOPICK": false},
			},
			check: func(t *testing.T, l leaguedomain.League) {
				assert.Equal(t, "NFL", l.Abbr)
				assert.True(t, l.AllowTies())
				assert.False(t, l.ForceAutopick())
				assert.Equal(t, 4*time.Hour, l.GameDuration())
			},
		},
		{
			name:      "unknown league",
			abbr:      "MLB",
			expectErr: ErrLeagueNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := leaguefake.New()
			seedLeague(repo)
			s := newTestService(repo, kickoff, tt.picker)

			got, err := s.GetLeague(context.Background(), tt.abbr)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestLeagueService_GetGameSet(t *testing.T) {
	repo := leaguefake.New()
	league, home, away := seedLeague(repo)
	gs := repo.AddGameSet(&leaguedb.GameSet{
		LeagueID: league.ID, Season: 2024, Sequence: 1,
		Opens: kickoff.Add(-72 * time.Hour), Closes: kickoff.Add(96 * time.Hour),
		Games: []*leaguedb.Game{{Home: home, Away: away, StartTime: kickoff}},
	})
	s := newTestService(repo, kickoff, nil)

	got, err := s.GetGameSet(context.Background(), gs.ID)
	require.NoError(t, err)
	require.Len(t, got.Games, 1)
	assert.Equal(t, "CHI @ GB", got.Games[0].ShortDescription())
	assert.Equal(t, leaguedomain.StatusUnplayed, got.Games[0].Status)

	_, err = s.GetGameSet(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrGameSetNotFound)
}

func TestLeagueService_CurrentGameSet(t *testing.T) {
	week := 7 * 24 * time.Hour
	opens := time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		seed      bool
		want      int
		expectErr error
	}{
		{name: "inside the second window", now: opens.Add(week + time.Hour), seed: true, want: 2},
		{name: "before the season starts", now: opens.Add(-week), seed: true, want: 1},
		{name: "after the season", now: opens.Add(10 * week), seed: true, want: 2},
		{name: "no gamesets", now: opens, expectErr: ErrNoCurrentGameSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := leaguefake.New()
			league, home, away := seedLeague(repo)
			if tt.seed {
				for seq := 1; seq <= 2; seq++ {
					o := opens.Add(time.Duration(seq-1) * week)
					repo.AddGameSet(&leaguedb.GameSet{
						LeagueID: league.ID, Season: 2024, Sequence: seq,
						Opens: o, Closes: o.Add(week - time.Second),
						Games: []*leaguedb.Game{{Home: home, Away: away, StartTime: o.Add(4 * 24 * time.Hour)}},
					})
				}
			}
			s := newTestService(repo, tt.now, nil)

			got, err := s.CurrentGameSet(context.Background(), "NFL")
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Sequence)
			assert.Len(t, got.Games, 1, "current gameset is returned with its games")
		})
	}
}

func TestLeagueService_ImportSeason(t *testing.T) {
	opens := time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC)
	closes := opens.Add(3 * 24 * time.Hour)
	schedule := SeasonSchedule{
		League: LeagueSpec{Abbr: "NFL", Name: "National Football League"},
		Season: 2024,
		Teams: []TeamSpec{
			{Abbr: "GB", Name: "Green Bay", Nickname: "Packers", Conference: "NFC", Division: "North"},
			{Abbr: "CHI", Name: "Chicago", Nickname: "Bears", Conference: "NFC", Division: "North"},
			{Abbr: "KC", Name: "Kansas City", Nickname: "Chiefs", Conference: "AFC", Aliases: []string{"KAN"}},
		},
		GameSets: []GameSetSpec{
			{
				Sequence: 1, Opens: opens,
				Byes:  []string{"Chiefs"},
				Games: []GameSpec{{Home: "GB", Away: "Bears", Start: kickoff}},
			},
			{
				Sequence: 2, Opens: opens.Add(7 * 24 * time.Hour), Closes: &closes,
				Games: []GameSpec{{Home: "KAN", Away: "GB", Start: kickoff.Add(7 * 24 * time.Hour)}},
			},
		},
	}

	t.Run("imports and derives windows", func(t *testing.T) {
		repo := leaguefake.New()
		s := newTestService(repo, opens, map[string]any{"NFL": map[string]any{"GAMESET_DURATION": map[string]any{"days": 6}}})

		summary, err := s.ImportSeason(context.Background(), schedule)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Teams)
		assert.Equal(t, 2, summary.Games)
		require.Len(t, summary.GameSets, 2)
		assert.Equal(t, opens.Add(6*24*time.Hour), summary.GameSets[0].Closes)
		assert.Equal(t, closes, summary.GameSets[1].Closes)

		assert.Len(t, repo.Conferences, 2)
		assert.Len(t, repo.Divisions, 1)
		gs := repo.GameSets[summary.GameSets[0].ID]
		require.Len(t, gs.Byes, 1)
		assert.Equal(t, "KC", gs.Byes[0].Abbr)

		league := repo.Leagues[summary.LeagueID]
		assert.Equal(t, "NFL", league.Slug)
		assert.Equal(t, 240, league.AvgGameDuration)
	})

	t.Run("re-import keeps recorded points", func(t *testing.T) {
		repo := leaguefake.New()
		s := newTestService(repo, opens, nil)

		first, err := s.ImportSeason(context.Background(), schedule)
		require.NoError(t, err)
		id := first.GameSets[0].ID
		require.NoError(t, repo.SetGameSetPoints(context.Background(), nil, id, 44))

		second, err := s.ImportSeason(context.Background(), schedule)
		require.NoError(t, err)
		assert.Equal(t, id, second.GameSets[0].ID)
		assert.Equal(t, 44, repo.GameSets[id].Points)
		assert.Len(t, repo.GameSets[id].Games, 1, "games are upserted in place")
		assert.Len(t, repo.Teams, 3)
	})

	t.Run("rejects reserved abbreviations before writing", func(t *testing.T) {
		repo := leaguefake.New()
		s := newTestService(repo, opens, nil)

		bad := schedule
		bad.Teams = append([]TeamSpec{{Abbr: leaguedomain.TieKey, Name: "Tie"}}, schedule.Teams...)
		_, err := s.ImportSeason(context.Background(), bad)
		assert.ErrorIs(t, err, leaguedomain.ErrInvalidAbbr)
		assert.Empty(t, repo.Trace())
	})

	t.Run("unknown team in a game", func(t *testing.T) {
		repo := leaguefake.New()
		s := newTestService(repo, opens, nil)

		bad := schedule
		bad.GameSets = []GameSetSpec{{Sequence: 1, Opens: opens, Games: []GameSpec{{Home: "GB", Away: "Vikings", Start: kickoff}}}}
		_, err := s.ImportSeason(context.Background(), bad)
		assert.ErrorIs(t, err, ErrUnknownTeam)
	})
}

func TestLeagueService_TeamRecords(t *testing.T) {
	repo := leaguefake.New()
	league, home, away := seedLeague(repo)
	repo.AddGameSet(&leaguedb.GameSet{
		LeagueID: league.ID, Season: 2024, Sequence: 1,
		Games: []*leaguedb.Game{
			{Home: home, Away: away, StartTime: kickoff, Status: "H"},
			{Home: away, Away: home, StartTime: kickoff.Add(time.Hour), Status: "T"},
			{Home: away, Away: home, StartTime: kickoff.Add(2 * time.Hour)},
		},
	})
	s := newTestService(repo, kickoff, nil)

	got, err := s.TeamRecords(context.Background(), "NFL", 0)
	require.NoError(t, err)
	assert.Equal(t, leaguedomain.TeamRecord{Wins: 1, Ties: 1}, got[home.ID])
	assert.Equal(t, leaguedomain.TeamRecord{Losses: 1, Ties: 1}, got[away.ID])

	_, err = s.TeamRecords(context.Background(), "XFL", 0)
	assert.True(t, errors.Is(err, ErrLeagueNotFound))
}
