package leagueservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/benbjohnson/clock"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// LeagueService implements the Service interface.
type LeagueService struct {
	repo     leaguedb.Repository
	logger   *slog.Logger
	metrics  metrics.Recorder
	tracer   trace.Tracer
	db       *bun.DB
	clock    clock.Clock
	settings leaguedomain.SettingsSource
}

var _ Service = (*LeagueService)(nil)

// NewLeagueService creates a new LeagueService.
func NewLeagueService(
	repo leaguedb.Repository,
	logger *slog.Logger,
	metrics metrics.Recorder,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	settings leaguedomain.SettingsSource,
) *LeagueService {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &LeagueService{
		repo:     repo,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		clock:    clk,
		settings: settings,
	}
}

func (s *LeagueService) telemetry() operation.Telemetry {
	return operation.Telemetry{Service: "LeagueService", Logger: s.logger, Metrics: s.metrics, Tracer: s.tracer}
}

// unwrap flattens an operation result into the (value, error) form callers use.
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

// GetLeague loads a league by abbreviation with its layered settings bound.
func (s *LeagueService) GetLeague(ctx context.Context, abbr string) (leaguedomain.League, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "GetLeague", abbr,
		func(ctx context.Context) (results.OperationResult[leaguedomain.League, error], error) {
			return s.loadLeague(ctx, s.db, abbr)
		}))
}

func (s *LeagueService) loadLeague(ctx context.Context, db bun.IDB, abbr string) (results.OperationResult[leaguedomain.League, error], error) {
	league, err := s.repo.GetLeagueByAbbr(ctx, db, abbr)
	if err != nil {
		if errors.Is(err, leaguedb.ErrNotFound) {
			return results.FailureResult[leaguedomain.League, error](fmt.Errorf("%w: %s", ErrLeagueNotFound, abbr)), nil
		}
		return results.OperationResult[leaguedomain.League, error]{}, err
	}
	return results.SuccessResult[leaguedomain.League, error](league.ToDomain(s.settings)), nil
}

// GetGameSet loads a gameset with its games and byes.
func (s *LeagueService) GetGameSet(ctx context.Context, id int64) (leaguedomain.GameSet, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "GetGameSet", strconv.FormatInt(id, 10),
		func(ctx context.Context) (results.OperationResult[leaguedomain.GameSet, error], error) {
			gs, err := s.repo.GetGameSet(ctx, s.db, id)
			if err != nil {
				if errors.Is(err, leaguedb.ErrNotFound) {
					return results.FailureResult[leaguedomain.GameSet, error](ErrGameSetNotFound), nil
				}
				return results.OperationResult[leaguedomain.GameSet, error]{}, err
			}
			return results.SuccessResult[leaguedomain.GameSet, error](gs.ToDomain()), nil
		}))
}

// CurrentGameSet resolves the gameset in play for a league right now.
func (s *LeagueService) CurrentGameSet(ctx context.Context, abbr string) (leaguedomain.GameSet, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "CurrentGameSet", abbr,
		func(ctx context.Context) (results.OperationResult[leaguedomain.GameSet, error], error) {
			return s.currentGameSetLogic(ctx, s.db, abbr)
		}))
}

func (s *LeagueService) currentGameSetLogic(ctx context.Context, db bun.IDB, abbr string) (results.OperationResult[leaguedomain.GameSet, error], error) {
	leagueRes, err := s.loadLeague(ctx, db, abbr)
	if err != nil {
		return results.OperationResult[leaguedomain.GameSet, error]{}, err
	}
	if leagueRes.IsFailure() {
		return results.FailureResult[leaguedomain.GameSet, error](*leagueRes.Failure), nil
	}
	league := *leagueRes.Success

	rows, err := s.repo.ListGameSets(ctx, db, league.ID, 0)
	if err != nil {
		return results.OperationResult[leaguedomain.GameSet, error]{}, err
	}
	sets := make([]leaguedomain.GameSet, 0, len(rows))
	for _, row := range rows {
		sets = append(sets, row.ToDomain())
	}

	current, ok := leaguedomain.CurrentGameSet(sets, s.clock.Now())
	if !ok {
		return results.FailureResult[leaguedomain.GameSet, error](fmt.Errorf("%w: %s", ErrNoCurrentGameSet, abbr)), nil
	}

	full, err := s.repo.GetGameSet(ctx, db, current.ID)
	if err != nil {
		return results.OperationResult[leaguedomain.GameSet, error]{}, err
	}
	return results.SuccessResult[leaguedomain.GameSet, error](full.ToDomain()), nil
}

// TeamRecords tallies each team's season record from decided games.
func (s *LeagueService) TeamRecords(ctx context.Context, abbr string, season int) (map[int64]leaguedomain.TeamRecord, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "TeamRecords", abbr,
		func(ctx context.Context) (results.OperationResult[map[int64]leaguedomain.TeamRecord, error], error) {
			leagueRes, err := s.loadLeague(ctx, s.db, abbr)
			if err != nil {
				return results.OperationResult[map[int64]leaguedomain.TeamRecord, error]{}, err
			}
			if leagueRes.IsFailure() {
				return results.FailureResult[map[int64]leaguedomain.TeamRecord, error](*leagueRes.Failure), nil
			}
			league := *leagueRes.Success
			if season == 0 {
				season = league.Season()
			}
			rows, err := s.repo.ListSeasonGames(ctx, s.db, league.ID, season)
			if err != nil {
				return results.OperationResult[map[int64]leaguedomain.TeamRecord, error]{}, err
			}
			games := make([]leaguedomain.Game, 0, len(rows))
			for _, row := range rows {
				games = append(games, row.ToDomain())
			}
			return results.SuccessResult[map[int64]leaguedomain.TeamRecord, error](leaguedomain.TallyRecords(games)), nil
		}))
}
