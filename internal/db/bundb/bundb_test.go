package bundb_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	playoffsdb "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/internal/db/bundb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// setupDB starts Postgres, applies every migration and returns the handle.
func setupDB(t *testing.T) *bun.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("picker"),
		postgres.WithUsername("picker"),
		postgres.WithPassword("picker"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	db, err := bundb.Open(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, bundb.Migrate(ctx, db, dsn, logger))
	return db
}

type seeded struct {
	league *leaguedb.League
	home   *leaguedb.Team
	away   *leaguedb.Team
	gs     *leaguedb.GameSet
	game   *leaguedb.Game
}

func seedLeague(t *testing.T, ctx context.Context, repo leaguedb.Repository) seeded {
	t.Helper()
	opens := time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC)

	s := seeded{
		league: &leaguedb.League{Name: "National Football League", Abbr: "NFL", Slug: "nfl", CurrentSeason: 2024, AvgGameDuration: 240},
	}
	require.NoError(t, repo.UpsertLeague(ctx, nil, s.league))

	s.home = &leaguedb.Team{LeagueID: s.league.ID, Abbr: "GB", Name: "Green Bay", Nickname: "Packers", Aliases: []string{"GNB"}}
	s.away = &leaguedb.Team{LeagueID: s.league.ID, Abbr: "CHI", Name: "Chicago", Nickname: "Bears"}
	require.NoError(t, repo.UpsertTeam(ctx, nil, s.home))
	require.NoError(t, repo.UpsertTeam(ctx, nil, s.away))

	s.gs = &leaguedb.GameSet{LeagueID: s.league.ID, Season: 2024, Sequence: 1, Opens: opens, Closes: opens.Add(6 * 24 * time.Hour)}
	require.NoError(t, repo.UpsertGameSet(ctx, nil, s.gs))

	s.game = &leaguedb.Game{GameSetID: s.gs.ID, HomeID: s.home.ID, AwayID: s.away.ID, StartTime: opens.Add(5 * 24 * time.Hour)}
	require.NoError(t, repo.UpsertGame(ctx, nil, s.game))
	return s
}

func TestRepositories(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	leagues := leaguedb.NewRepository(db)
	picks := picksdb.NewRepository(db)
	playoffs := playoffsdb.NewRepository(db)

	s := seedLeague(t, ctx, leagues)

	t.Run("league lookups", func(t *testing.T) {
		got, err := leagues.GetLeagueByAbbr(ctx, nil, "nfl")
		require.NoError(t, err)
		assert.Equal(t, s.league.ID, got.ID)

		_, err = leagues.GetLeagueByAbbr(ctx, nil, "XFL")
		assert.ErrorIs(t, err, leaguedb.ErrNotFound)

		teams, err := leagues.ListTeams(ctx, nil, s.league.ID)
		require.NoError(t, err)
		require.Len(t, teams, 2)
		assert.Equal(t, "CHI", teams[0].Abbr)
		assert.Equal(t, []string{"GNB"}, teams[1].Aliases)
	})

	t.Run("gameset loads games with teams and byes", func(t *testing.T) {
		bye := &leaguedb.Team{LeagueID: s.league.ID, Abbr: "DET", Name: "Detroit"}
		require.NoError(t, leagues.UpsertTeam(ctx, nil, bye))
		require.NoError(t, leagues.ReplaceByes(ctx, nil, s.gs.ID, []int64{bye.ID}))

		gs, err := leagues.GetGameSet(ctx, nil, s.gs.ID)
		require.NoError(t, err)
		require.Len(t, gs.Games, 1)
		assert.Equal(t, "GB", gs.Games[0].Home.Abbr)
		assert.Equal(t, "CHI", gs.Games[0].Away.Abbr)
		require.Len(t, gs.Byes, 1)
		assert.Equal(t, "DET", gs.Byes[0].Abbr)

		_, err = leagues.GetGameSet(ctx, nil, 999999)
		assert.ErrorIs(t, err, leaguedb.ErrNotFound)
	})

	t.Run("re-import keeps points and results", func(t *testing.T) {
		require.NoError(t, leagues.SetGameSetPoints(ctx, nil, s.gs.ID, 41))

		home, away := 24, 17
		s.game.Status, s.game.HomeScore, s.game.AwayScore = "H", &home, &away
		require.NoError(t, leagues.UpdateGameResult(ctx, nil, s.game))

		again := &leaguedb.GameSet{LeagueID: s.league.ID, Season: 2024, Sequence: 1, Opens: s.gs.Opens, Closes: s.gs.Closes.Add(time.Hour)}
		require.NoError(t, leagues.UpsertGameSet(ctx, nil, again))
		assert.Equal(t, s.gs.ID, again.ID)
		assert.Equal(t, 41, again.Points)

		game := &leaguedb.Game{GameSetID: s.gs.ID, HomeID: s.home.ID, AwayID: s.away.ID, StartTime: s.game.StartTime.Add(time.Hour)}
		require.NoError(t, leagues.UpsertGame(ctx, nil, game))
		assert.Equal(t, s.game.ID, game.ID)
		assert.Equal(t, "H", game.Status)

		gs, err := leagues.GetGameSet(ctx, nil, s.gs.ID)
		require.NoError(t, err)
		assert.True(t, s.gs.Closes.Add(time.Hour).Equal(gs.Closes))
		require.NotNil(t, gs.Games[0].HomeScore)
		assert.Equal(t, 24, *gs.Games[0].HomeScore)

		stats, err := leagues.PointsStats(ctx, nil, s.league.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Count)
		assert.InDelta(t, 41.0, stats.Avg, 0.001)
	})

	t.Run("lock gameset inside a transaction", func(t *testing.T) {
		err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return leagues.LockGameSet(ctx, tx, s.gs.ID)
		})
		require.NoError(t, err)

		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return leagues.LockGameSet(ctx, tx, 999999)
		})
		assert.ErrorIs(t, err, leaguedb.ErrNotFound)
	})

	t.Run("pickset create is first writer wins", func(t *testing.T) {
		ps := &picksdb.PickSet{UserID: "u1", GameSetID: s.gs.ID, Strategy: "USER", Points: 40}
		created, err := picks.CreatePickSet(ctx, nil, ps)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotZero(t, ps.ID)

		dup := &picksdb.PickSet{UserID: "u1", GameSetID: s.gs.ID, Strategy: "RAND"}
		created, err = picks.CreatePickSet(ctx, nil, dup)
		require.NoError(t, err)
		assert.False(t, created)

		pick := &picksdb.GamePick{PickSetID: ps.ID, GameID: s.game.ID}
		pick.SetWinner(leaguedomain.TeamWinner(s.home.ID))
		require.NoError(t, picks.InsertGamePicks(ctx, nil, []*picksdb.GamePick{pick}))

		other := &picksdb.GamePick{PickSetID: ps.ID, GameID: s.game.ID}
		other.SetWinner(leaguedomain.TeamWinner(s.away.ID))
		require.NoError(t, picks.InsertGamePicks(ctx, nil, []*picksdb.GamePick{other}))

		got, err := picks.GetPickSet(ctx, nil, s.gs.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, "USER", got.Strategy)
		require.Len(t, got.Picks, 1)
		require.NotNil(t, got.Picks[0].WinnerID)
		assert.Equal(t, s.home.ID, *got.Picks[0].WinnerID)

		got.Correct, got.Wrong, got.IsWinner = 1, 0, true
		require.NoError(t, picks.UpdatePickSetStatuses(ctx, nil, []*picksdb.PickSet{got}))

		season, err := picks.ListSeasonPickSets(ctx, nil, s.league.ID, 2024)
		require.NoError(t, err)
		require.Len(t, season, 1)
		assert.Equal(t, 1, season[0].Correct)
		assert.True(t, season[0].IsWinner)
		assert.Equal(t, 1, season[0].Sequence)
		assert.Equal(t, 41, season[0].GameSetPoints)

		_, err = picks.GetPickSet(ctx, nil, s.gs.ID, "nobody")
		assert.ErrorIs(t, err, picksdb.ErrNotFound)
	})

	t.Run("participants are active members with preferences", func(t *testing.T) {
		group := &picksdb.Group{Name: "office", Status: "ACTV", Category: "PVT"}
		require.NoError(t, picks.UpsertGroup(ctx, nil, group))
		require.NoError(t, picks.AddGroupLeague(ctx, nil, group.ID, s.league.ID))
		require.NoError(t, picks.UpsertMembership(ctx, nil, &picksdb.Membership{UserID: "u1", GroupID: group.ID, Status: "ACTV"}))
		require.NoError(t, picks.UpsertMembership(ctx, nil, &picksdb.Membership{UserID: "u2", GroupID: group.ID, Status: "SUSP"}))
		require.NoError(t, picks.UpsertPreference(ctx, nil, &picksdb.Preference{UserID: "u1", Autopick: "NONE"}))
		require.NoError(t, picks.UpsertFavorite(ctx, nil, &picksdb.Favorite{UserID: "u1", LeagueID: s.league.ID, TeamID: &s.home.ID}))

		rows, err := picks.ListParticipants(ctx, nil, s.league.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "u1", rows[0].UserID)
		assert.Equal(t, "NONE", rows[0].Autopick)
		require.NotNil(t, rows[0].FavoriteTeamID)
		assert.Equal(t, s.home.ID, *rows[0].FavoriteTeamID)
	})

	t.Run("playoff seeds and brackets", func(t *testing.T) {
		p := &playoffsdb.Playoff{LeagueID: s.league.ID, Season: 2024, Kickoff: time.Date(2025, 1, 11, 18, 0, 0, 0, time.UTC)}
		require.NoError(t, playoffs.UpsertPlayoff(ctx, nil, p))
		require.NoError(t, playoffs.ReplaceSeeds(ctx, nil, p.ID, []*playoffsdb.PlayoffTeam{
			{TeamID: s.home.ID, Seed: 1},
			{TeamID: s.away.ID, Seed: 2},
		}))

		got, err := playoffs.GetPlayoffBySeason(ctx, nil, s.league.ID, 2024)
		require.NoError(t, err)
		require.Len(t, got.Teams, 2)
		assert.Equal(t, "GB", got.Teams[0].Team.Abbr)

		_, err = playoffs.GetAdminPicks(ctx, nil, p.ID)
		assert.ErrorIs(t, err, playoffsdb.ErrNotFound)

		require.NoError(t, playoffs.UpsertAdminPicks(ctx, nil, &playoffsdb.PlayoffPicks{PlayoffID: p.ID, Picks: map[string]string{"game_1": "GB"}}))
		require.NoError(t, playoffs.UpsertAdminPicks(ctx, nil, &playoffsdb.PlayoffPicks{PlayoffID: p.ID, Picks: map[string]string{"game_1": "CHI"}}))
		admin, err := playoffs.GetAdminPicks(ctx, nil, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "CHI", admin.Picks["game_1"])

		user := "u1"
		require.NoError(t, playoffs.UpsertUserPicks(ctx, nil, &playoffsdb.PlayoffPicks{PlayoffID: p.ID, UserID: &user, Picks: map[string]string{"game_1": "GB"}}))
		require.NoError(t, playoffs.UpsertUserPicks(ctx, nil, &playoffsdb.PlayoffPicks{PlayoffID: p.ID, UserID: &user, Picks: map[string]string{"game_1": "GB", "points": "31"}}))
		entries, err := playoffs.ListUserPicks(ctx, nil, p.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "31", entries[0].Picks["points"])
	})
}
