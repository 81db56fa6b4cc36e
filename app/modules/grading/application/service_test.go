package gradingservice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/picker-bot/app/eventbus"
	gradingdomain "github.com/Black-And-White-Club/picker-bot/app/modules/grading/domain"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories/leaguefake"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories/picksfake"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 9, 8, 18, 0, 0, 0, time.UTC)

// FakeNotifier records published events.
type FakeNotifier struct {
	mu     sync.Mutex
	events []eventbus.ResultsGraded

	ResultsGradedFunc func(ctx context.Context, ev eventbus.ResultsGraded) error
}

func (f *FakeNotifier) ResultsGraded(ctx context.Context, ev eventbus.ResultsGraded) error {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	if f.ResultsGradedFunc != nil {
		return f.ResultsGradedFunc(ctx, ev)
	}
	return nil
}

func (f *FakeNotifier) Events() []eventbus.ResultsGraded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]eventbus.ResultsGraded(nil), f.events...)
}

// FakeFeed serves canned results.
type FakeFeed struct {
	FetchFunc func(ctx context.Context, league leaguedomain.League, gs leaguedomain.GameSet) (*gradingdomain.Results, error)
}

func (f *FakeFeed) Fetch(ctx context.Context, league leaguedomain.League, gs leaguedomain.GameSet) (*gradingdomain.Results, error) {
	return f.FetchFunc(ctx, league, gs)
}

type fixture struct {
	leagues  *leaguefake.Repo
	picks    *picksfake.Repo
	notifier *FakeNotifier
	clock    *clock.Mock
	gameset  *leaguedb.GameSet
	started  *leaguedb.Game
	upcoming *leaguedb.Game
}

// newFixture builds week 1 of 2024: GRF@HUF already kicked off, RVN@SLY
// starts in two hours. u1 picked HUF and SLY with 40 points, u2 picked GRF
// with 45 points.
func newFixture() *fixture {
	f := &fixture{leagues: leaguefake.New(), notifier: &FakeNotifier{}, clock: clock.NewMock()}
	f.clock.Set(now)
	f.picks = picksfake.New(f.leagues)
	league := f.leagues.AddLeague(&leaguedb.League{Abbr: "RSL", Name: "Rook Soccer League", Slug: "rsl", CurrentSeason: 2024, AvgGameDuration: 240})
	huf := f.leagues.AddTeam(&leaguedb.Team{LeagueID: league.ID, Abbr: "HUF", Name: "Hufflepuff"})
	grf := f.leagues.AddTeam(&leaguedb.Team{LeagueID: league.ID, Abbr: "GRF", Name: "Gryffindor"})
	rvn := f.leagues.AddTeam(&leaguedb.Team{LeagueID: league.ID, Abbr: "RVN", Name: "Ravenclaw"})
	sly := f.leagues.AddTeam(&leaguedb.Team{LeagueID: league.ID, Abbr: "SLY", Name: "Slytherin"})

	f.started = &leaguedb.Game{Home: huf, Away: grf, StartTime: now.Add(-time.Hour)}
	f.upcoming = &leaguedb.Game{Home: sly, Away: rvn, StartTime: now.Add(2 * time.Hour)}
	f.gameset = f.leagues.AddGameSet(&leaguedb.GameSet{
		LeagueID: league.ID, Season: 2024, Sequence: 1,
		Opens: now.Add(-48 * time.Hour), Closes: now.Add(5 * 24 * time.Hour),
		Games: []*leaguedb.Game{f.started, f.upcoming},
	})

	f.picks.Seed(&picksdb.PickSet{UserID: "u1", GameSetID: f.gameset.ID, Points: 40, Picks: []*picksdb.GamePick{
		{GameID: f.started.ID, WinnerID: &huf.ID},
		{GameID: f.upcoming.ID, WinnerID: &sly.ID},
	}})
	f.picks.Seed(&picksdb.PickSet{UserID: "u2", GameSetID: f.gameset.ID, Points: 45, Picks: []*picksdb.GamePick{
		{GameID: f.started.ID, WinnerID: &grf.ID},
	}})
	return f
}

func (f *fixture) service(feed Feed) *GradingService {
	return NewGradingService(f.leagues, f.picks, feed, f.notifier, slog.Default(), metrics.NewNoop(), nil, nil, f.clock,
		leaguedomain.NewSettingsSource(nil))
}

func hufFinal() gradingdomain.GameResult {
	return gradingdomain.GameResult{Home: "HUF", Away: "GRF", HomeScore: 24, AwayScore: 17, Status: "Final", Winner: "HUF"}
}

func slyFinal() gradingdomain.GameResult {
	return gradingdomain.GameResult{Home: "SLY", Away: "RVN", HomeScore: 21, AwayScore: 20, Status: "Final", Winner: "SLY"}
}

func payload(games ...gradingdomain.GameResult) *gradingdomain.Results {
	return &gradingdomain.Results{Season: 2024, Sequence: 1, Games: games}
}

func TestGradingService_UpdateResults(t *testing.T) {
	t.Run("decides only the final game", func(t *testing.T) {
		f := newFixture()
		s := f.service(nil)
		scheduled := gradingdomain.GameResult{Home: "SLY", Away: "RVN", Status: "Scheduled"}

		got, err := s.UpdateResults(context.Background(), f.gameset.ID, payload(hufFinal(), scheduled))
		require.NoError(t, err)

		assert.Equal(t, 1, got.Updated)
		assert.Equal(t, 0, got.Points)
		assert.Empty(t, got.Winners)
		assert.Equal(t, "H", f.leagues.Game(f.started.ID).Status)
		assert.Equal(t, 24, *f.leagues.Game(f.started.ID).HomeScore)
		assert.Equal(t, "U", f.leagues.Game(f.upcoming.ID).Status)

		u1 := f.picks.PickSetFor(f.gameset.ID, "u1")
		assert.Equal(t, 1, u1.Correct)
		assert.Equal(t, 1, u1.Wrong)
		u2 := f.picks.PickSetFor(f.gameset.ID, "u2")
		assert.Equal(t, 0, u2.Correct)
		assert.Equal(t, 1, u2.Wrong)
		assert.False(t, u1.IsWinner)

		events := f.notifier.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "RSL", events[0].League)
		assert.Equal(t, 1, events[0].Updated)
	})

	t.Run("repeated results are a no-op", func(t *testing.T) {
		f := newFixture()
		s := f.service(nil)
		_, err := s.UpdateResults(context.Background(), f.gameset.ID, payload(hufFinal()))
		require.NoError(t, err)

		got, err := s.UpdateResults(context.Background(), f.gameset.ID, payload(hufFinal()))
		require.NoError(t, err)
		assert.Equal(t, 0, got.Updated)
		assert.Len(t, f.notifier.Events(), 1)
	})

	t.Run("last game over sets points and winners", func(t *testing.T) {
		f := newFixture()
		s := f.service(nil)
		f.clock.Set(now.Add(7 * time.Hour))

		got, err := s.UpdateResults(context.Background(), f.gameset.ID, payload(hufFinal(), slyFinal()))
		require.NoError(t, err)

		assert.Equal(t, 2, got.Updated)
		assert.Equal(t, 41, got.Points)
		assert.Equal(t, []string{"u1"}, got.Winners)
		assert.Equal(t, 41, f.leagues.GameSets[f.gameset.ID].Points)
		assert.True(t, f.picks.PickSetFor(f.gameset.ID, "u1").IsWinner)
		assert.False(t, f.picks.PickSetFor(f.gameset.ID, "u2").IsWinner)
	})

	t.Run("points arrive on a later pass", func(t *testing.T) {
		f := newFixture()
		s := f.service(nil)
		f.clock.Set(now.Add(3 * time.Hour))

		first, err := s.UpdateResults(context.Background(), f.gameset.ID, payload(hufFinal(), slyFinal()))
		require.NoError(t, err)
		assert.Equal(t, 2, first.Updated)
		assert.Equal(t, 0, first.Points, "last game not over yet")

		f.clock.Set(now.Add(7 * time.Hour))
		second, err := s.UpdateResults(context.Background(), f.gameset.ID, payload(hufFinal(), slyFinal()))
		require.NoError(t, err)
		assert.Equal(t, 0, second.Updated)
		assert.Equal(t, 41, second.Points)
		assert.Equal(t, []string{"u1"}, second.Winners)
		assert.Len(t, f.notifier.Events(), 2)
	})

	t.Run("nothing final", func(t *testing.T) {
		f := newFixture()
		got, err := f.service(nil).UpdateResults(context.Background(), f.gameset.ID, payload())
		require.NoError(t, err)
		assert.Equal(t, Summary{GameSetID: f.gameset.ID}, got)
		assert.NotContains(t, f.leagues.Trace(), "UpdateGameResult")
	})

	t.Run("notifier failure does not fail grading", func(t *testing.T) {
		f := newFixture()
		f.notifier.ResultsGradedFunc = func(context.Context, eventbus.ResultsGraded) error {
			return errors.New("nats down")
		}
		got, err := f.service(nil).UpdateResults(context.Background(), f.gameset.ID, payload(hufFinal()))
		require.NoError(t, err)
		assert.Equal(t, 1, got.Updated)
	})
}

func TestGradingService_UpdateResults_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		gameset func(f *fixture) int64
		results *gradingdomain.Results
		wantErr error
	}{
		{
			name:    "no results",
			gameset: func(f *fixture) int64 { return f.gameset.ID },
			results: nil,
			wantErr: gradingdomain.ErrResultsUnavailable,
		},
		{
			name:    "wrong sequence",
			gameset: func(f *fixture) int64 { return f.gameset.ID },
			results: &gradingdomain.Results{Season: 2024, Sequence: 2, Games: []gradingdomain.GameResult{hufFinal()}},
			wantErr: gradingdomain.ErrResultsMismatch,
		},
		{
			name:    "wrong season",
			gameset: func(f *fixture) int64 { return f.gameset.ID },
			results: &gradingdomain.Results{Season: 2023, Sequence: 1, Games: []gradingdomain.GameResult{hufFinal()}},
			wantErr: gradingdomain.ErrResultsMismatch,
		},
		{
			name:    "unknown gameset",
			gameset: func(*fixture) int64 { return 9999 },
			results: payload(hufFinal()),
			wantErr: ErrGameSetNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.service(nil).UpdateResults(context.Background(), tt.gameset(f), tt.results)
			require.ErrorIs(t, err, tt.wantErr)
			assert.NotContains(t, f.leagues.Trace(), "UpdateGameResult")
			assert.Equal(t, "U", f.leagues.Game(f.started.ID).Status)
			assert.Empty(t, f.notifier.Events())
		})
	}
}

func TestGradingService_UpdateResults_Concurrent(t *testing.T) {
	f := newFixture()
	s := f.service(nil)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.UpdateResults(context.Background(), f.gameset.ID, payload(hufFinal()))
			assert.NoError(t, err)
			mu.Lock()
			total += got.Updated
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, total)
	assert.Len(t, f.notifier.Events(), 1)
}

func TestGradingService_GradeLeague(t *testing.T) {
	t.Run("applies fetched results to the current gameset", func(t *testing.T) {
		f := newFixture()
		var fetched leaguedomain.GameSet
		feed := &FakeFeed{FetchFunc: func(_ context.Context, league leaguedomain.League, gs leaguedomain.GameSet) (*gradingdomain.Results, error) {
			assert.Equal(t, "rsl", league.Slug)
			fetched = gs
			return payload(hufFinal()), nil
		}}

		got, err := f.service(feed).GradeLeague(context.Background(), "RSL")
		require.NoError(t, err)
		assert.Equal(t, f.gameset.ID, fetched.ID)
		assert.Equal(t, 1, got.Updated)
	})

	t.Run("nothing published", func(t *testing.T) {
		f := newFixture()
		feed := &FakeFeed{FetchFunc: func(context.Context, leaguedomain.League, leaguedomain.GameSet) (*gradingdomain.Results, error) {
			return nil, nil
		}}
		got, err := f.service(feed).GradeLeague(context.Background(), "RSL")
		require.NoError(t, err)
		assert.Equal(t, 0, got.Updated)
		assert.NotContains(t, f.leagues.Trace(), "LockGameSet")
	})

	t.Run("feed error", func(t *testing.T) {
		f := newFixture()
		boom := errors.New("provider down")
		feed := &FakeFeed{FetchFunc: func(context.Context, leaguedomain.League, leaguedomain.GameSet) (*gradingdomain.Results, error) {
			return nil, boom
		}}
		_, err := f.service(feed).GradeLeague(context.Background(), "RSL")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown league", func(t *testing.T) {
		f := newFixture()
		_, err := f.service(&FakeFeed{}).GradeLeague(context.Background(), "XFL")
		assert.ErrorIs(t, err, ErrLeagueNotFound)
	})
}
