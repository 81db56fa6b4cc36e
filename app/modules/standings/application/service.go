package standingsservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	standingsdomain "github.com/Black-And-White-Club/picker-bot/app/modules/standings/domain"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrGameSetNotFound = errors.New("gameset not found")
	ErrLeagueNotFound  = errors.New("league not found")
)

// Service is the standings module's application surface.
type Service interface {
	GameSetStandings(ctx context.Context, gamesetID int64) ([]standingsdomain.Ranked[standingsdomain.Entry], error)
	SeasonStandings(ctx context.Context, leagueAbbr string, season int) ([]standingsdomain.Ranked[standingsdomain.SeasonEntry], error)
}

// StandingsService reads picksets and gamesets; it never writes.
type StandingsService struct {
	picks    picksdb.Repository
	leagues  leaguedb.Repository
	logger   *slog.Logger
	metrics  metrics.Recorder
	tracer   trace.Tracer
	db       *bun.DB
	settings leaguedomain.SettingsSource
}

var _ Service = (*StandingsService)(nil)

func NewStandingsService(
	picks picksdb.Repository,
	leagues leaguedb.Repository,
	logger *slog.Logger,
	metrics metrics.Recorder,
	tracer trace.Tracer,
	db *bun.DB,
	settings leaguedomain.SettingsSource,
) *StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandingsService{
		picks:    picks,
		leagues:  leagues,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		settings: settings,
	}
}

func (s *StandingsService) telemetry() operation.Telemetry {
	return operation.Telemetry{Service: "StandingsService", Logger: s.logger, Metrics: s.metrics, Tracer: s.tracer}
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

// GameSetStandings ranks a gameset's picksets as last graded.
func (s *StandingsService) GameSetStandings(ctx context.Context, gamesetID int64) ([]standingsdomain.Ranked[standingsdomain.Entry], error) {
	type out = []standingsdomain.Ranked[standingsdomain.Entry]
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "GameSetStandings", strconv.FormatInt(gamesetID, 10),
		func(ctx context.Context) (results.OperationResult[out, error], error) {
			gs, err := s.leagues.GetGameSet(ctx, s.db, gamesetID)
			if err != nil {
				if errors.Is(err, leaguedb.ErrNotFound) {
					return results.FailureResult[out, error](fmt.Errorf("%w: %d", ErrGameSetNotFound, gamesetID)), nil
				}
				return results.OperationResult[out, error]{}, err
			}
			rows, err := s.picks.ListGameSetPickSets(ctx, s.db, gamesetID)
			if err != nil {
				return results.OperationResult[out, error]{}, err
			}
			picksets := make([]picksdomain.PickSet, 0, len(rows))
			for _, row := range rows {
				picksets = append(picksets, row.ToDomain())
			}
			return results.SuccessResult[out, error](standingsdomain.RankGameSet(picksets, gs.ToDomain())), nil
		}))
}

// SeasonStandings aggregates and ranks every user's season. A zero season
// means the league's current season; a negative one spans all seasons.
func (s *StandingsService) SeasonStandings(ctx context.Context, leagueAbbr string, season int) ([]standingsdomain.Ranked[standingsdomain.SeasonEntry], error) {
	type out = []standingsdomain.Ranked[standingsdomain.SeasonEntry]
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "SeasonStandings", leagueAbbr,
		func(ctx context.Context) (results.OperationResult[out, error], error) {
			row, err := s.leagues.GetLeagueByAbbr(ctx, s.db, leagueAbbr)
			if err != nil {
				if errors.Is(err, leaguedb.ErrNotFound) {
					return results.FailureResult[out, error](fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueAbbr)), nil
				}
				return results.OperationResult[out, error]{}, err
			}
			league := row.ToDomain(s.settings)
			switch {
			case season == 0:
				season = league.Season()
			case season < 0:
				season = 0
			}

			picksets, err := s.picks.ListSeasonPickSets(ctx, s.db, league.ID, season)
			if err != nil {
				return results.OperationResult[out, error]{}, err
			}
			seasonRows := make([]standingsdomain.SeasonRow, 0, len(picksets))
			for _, ps := range picksets {
				seasonRows = append(seasonRows, standingsdomain.SeasonRow{
					UserID:        ps.UserID,
					Correct:       ps.Correct,
					Wrong:         ps.Wrong,
					Points:        ps.Points,
					GameSetPoints: ps.GameSetPoints,
					IsWinner:      ps.IsWinner,
				})
			}
			ranked := standingsdomain.RankSeason(standingsdomain.AggregateSeason(seasonRows))
			return results.SuccessResult[out, error](ranked), nil
		}))
}
