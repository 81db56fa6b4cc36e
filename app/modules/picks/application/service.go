package picksservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/Black-And-White-Club/picker-bot/app/eventbus"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/benbjohnson/clock"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// PicksService implements the Service interface.
type PicksService struct {
	repo     picksdb.Repository
	leagues  leaguedb.Repository
	notifier Notifier
	logger   *slog.Logger
	metrics  metrics.Recorder
	tracer   trace.Tracer
	db       *bun.DB
	clock    clock.Clock
	settings leaguedomain.SettingsSource
	intn     picksdomain.IntN
}

var _ Service = (*PicksService)(nil)

// NewPicksService creates a new PicksService. A nil notifier disables
// events; a nil intn uses math/rand/v2.
func NewPicksService(
	repo picksdb.Repository,
	leagues leaguedb.Repository,
	notifier Notifier,
	logger *slog.Logger,
	metrics metrics.Recorder,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	settings leaguedomain.SettingsSource,
	intn picksdomain.IntN,
) *PicksService {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.New()
	}
	if intn == nil {
		intn = rand.IntN
	}
	return &PicksService{
		repo:     repo,
		leagues:  leagues,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		clock:    clk,
		settings: settings,
		intn:     intn,
	}
}

func (s *PicksService) telemetry() operation.Telemetry {
	return operation.Telemetry{Service: "PicksService", Logger: s.logger, Metrics: s.metrics, Tracer: s.tracer}
}

func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

func fail[S any](err error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](err), nil
}

// loadGameSet returns the gameset with its games and the league it belongs to.
// A missing gameset is a failure, not an error.
func (s *PicksService) loadGameSet(ctx context.Context, db bun.IDB, gamesetID int64) (leaguedomain.GameSet, leaguedomain.League, error) {
	row, err := s.leagues.GetGameSet(ctx, db, gamesetID)
	if err != nil {
		if errors.Is(err, leaguedb.ErrNotFound) {
			return leaguedomain.GameSet{}, leaguedomain.League{}, fmt.Errorf("%w: %d", ErrGameSetNotFound, gamesetID)
		}
		return leaguedomain.GameSet{}, leaguedomain.League{}, err
	}
	leagueRow, err := s.leagues.GetLeague(ctx, db, row.LeagueID)
	if err != nil {
		return leaguedomain.GameSet{}, leaguedomain.League{}, fmt.Errorf("load league %d: %w", row.LeagueID, err)
	}
	return row.ToDomain(), leagueRow.ToDomain(s.settings), nil
}

func (s *PicksService) loadLeague(ctx context.Context, db bun.IDB, abbr string) (leaguedomain.League, error) {
	row, err := s.leagues.GetLeagueByAbbr(ctx, db, abbr)
	if err != nil {
		if errors.Is(err, leaguedb.ErrNotFound) {
			return leaguedomain.League{}, fmt.Errorf("%w: %s", ErrLeagueNotFound, abbr)
		}
		return leaguedomain.League{}, err
	}
	return row.ToDomain(s.settings), nil
}

// GetPickSet loads a user's picks for a gameset.
func (s *PicksService) GetPickSet(ctx context.Context, gamesetID int64, userID string) (picksdomain.PickSet, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "GetPickSet", userID,
		func(ctx context.Context) (results.OperationResult[picksdomain.PickSet, error], error) {
			row, err := s.repo.GetPickSet(ctx, s.db, gamesetID, userID)
			if err != nil {
				if errors.Is(err, picksdb.ErrNotFound) {
					return fail[picksdomain.PickSet](ErrPickSetNotFound)
				}
				return results.OperationResult[picksdomain.PickSet, error]{}, err
			}
			return results.SuccessResult[picksdomain.PickSet, error](row.ToDomain()), nil
		}))
}

// RandomPoints draws a tiebreaker guess from the league's graded history.
func (s *PicksService) RandomPoints(ctx context.Context, leagueAbbr string) (int, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "RandomPoints", leagueAbbr,
		func(ctx context.Context) (results.OperationResult[int, error], error) {
			league, err := s.loadLeague(ctx, s.db, leagueAbbr)
			if errors.Is(err, ErrLeagueNotFound) {
				return fail[int](err)
			}
			if err != nil {
				return results.OperationResult[int, error]{}, err
			}
			pts, err := s.randomPoints(ctx, s.db, league.ID)
			if err != nil {
				return results.OperationResult[int, error]{}, err
			}
			return results.SuccessResult[int, error](pts), nil
		}))
}

func (s *PicksService) randomPoints(ctx context.Context, db bun.IDB, leagueID int64) (int, error) {
	stats, err := s.leagues.PointsStats(ctx, db, leagueID)
	if err != nil {
		return 0, err
	}
	return picksdomain.RandomPoints(stats.Count, stats.Avg, stats.StdDev, s.intn), nil
}

// autopicker builds the picker for st, loading season records only when
// the strategy needs them. StrategyUser falls back to Random.
func (s *PicksService) autopicker(ctx context.Context, db bun.IDB, league leaguedomain.League, gs leaguedomain.GameSet, st picksdomain.Strategy) (picksdomain.Autopicker, error) {
	in := picksdomain.AutopickerInputs{Rand: s.intn}
	if st == picksdomain.StrategyBest {
		games, err := s.leagues.ListSeasonGames(ctx, db, league.ID, gs.Season)
		if err != nil {
			return nil, err
		}
		decided := make([]leaguedomain.Game, 0, len(games))
		for _, g := range games {
			decided = append(decided, g.ToDomain())
		}
		in.Records = leaguedomain.TallyRecords(decided)
	}
	picker, err := picksdomain.AutopickerFor(st, in)
	if err != nil {
		return nil, err
	}
	if picker == nil {
		picker = picksdomain.RandomPicker(s.intn)
	}
	return picker, nil
}

func (s *PicksService) notify(ctx context.Context, ev eventbus.PicksUpdated) {
	if s.notifier == nil {
		return
	}
	ev.OccurredAt = s.clock.Now().UTC()
	if err := s.notifier.PicksUpdated(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish picks update",
			attr.ExtractCorrelationID(ctx),
			attr.GameSetID(ev.GameSetID),
			attr.UserID(ev.UserID),
			attr.Error(err),
		)
	}
}
