package playoffsservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	playoffsdomain "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/domain"
	playoffsdb "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/benbjohnson/clock"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// PlayoffsService implements the Service interface.
type PlayoffsService struct {
	repo     playoffsdb.Repository
	leagues  leaguedb.Repository
	logger   *slog.Logger
	metrics  metrics.Recorder
	tracer   trace.Tracer
	db       *bun.DB
	clock    clock.Clock
	settings leaguedomain.SettingsSource
}

var _ Service = (*PlayoffsService)(nil)

func NewPlayoffsService(
	repo playoffsdb.Repository,
	leagues leaguedb.Repository,
	logger *slog.Logger,
	metrics metrics.Recorder,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	settings leaguedomain.SettingsSource,
) *PlayoffsService {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &PlayoffsService{
		repo:     repo,
		leagues:  leagues,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		clock:    clk,
		settings: settings,
	}
}

func (s *PlayoffsService) telemetry() operation.Telemetry {
	return operation.Telemetry{Service: "PlayoffsService", Logger: s.logger, Metrics: s.metrics, Tracer: s.tracer}
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

// business reports whether err belongs on the failure side of a result.
func business(err error) bool {
	return errors.Is(err, ErrPlayoffNotFound) ||
		errors.Is(err, ErrLeagueNotFound) ||
		errors.Is(err, playoffsdomain.ErrUnknownTeam) ||
		errors.Is(err, playoffsdomain.ErrDuplicateSeed) ||
		errors.Is(err, leaguedomain.ErrTeamNotInLeague)
}

func (s *PlayoffsService) loadLeague(ctx context.Context, db bun.IDB, abbr string) (leaguedomain.League, error) {
	row, err := s.leagues.GetLeagueByAbbr(ctx, db, abbr)
	if err != nil {
		if errors.Is(err, leaguedb.ErrNotFound) {
			return leaguedomain.League{}, fmt.Errorf("%w: %s", ErrLeagueNotFound, abbr)
		}
		return leaguedomain.League{}, err
	}
	return row.ToDomain(s.settings), nil
}

func (s *PlayoffsService) loadPlayoff(ctx context.Context, db bun.IDB, id int64) (playoffsdomain.Playoff, error) {
	row, err := s.repo.GetPlayoff(ctx, db, id)
	if err != nil {
		if errors.Is(err, playoffsdb.ErrNotFound) {
			return playoffsdomain.Playoff{}, fmt.Errorf("%w: %d", ErrPlayoffNotFound, id)
		}
		return playoffsdomain.Playoff{}, err
	}
	return row.ToDomain(), nil
}

// CreatePlayoff creates or reschedules a league's playoff and replaces its
// seeds. Every seeded team must belong to the league.
func (s *PlayoffsService) CreatePlayoff(ctx context.Context, leagueAbbr string, season int, kickoff time.Time, seeds []SeedInput) (playoffsdomain.Playoff, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "CreatePlayoff", leagueAbbr,
		func(ctx context.Context) (results.OperationResult[playoffsdomain.Playoff, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[playoffsdomain.Playoff, error], error) {
				p, err := s.createPlayoffLogic(ctx, db, leagueAbbr, season, kickoff, seeds)
				if business(err) {
					return fail[playoffsdomain.Playoff](err)
				}
				if err != nil {
					return results.OperationResult[playoffsdomain.Playoff, error]{}, err
				}
				return results.SuccessResult[playoffsdomain.Playoff, error](p), nil
			})
		}))
}

func (s *PlayoffsService) createPlayoffLogic(ctx context.Context, db bun.IDB, leagueAbbr string, season int, kickoff time.Time, seeds []SeedInput) (playoffsdomain.Playoff, error) {
	league, err := s.loadLeague(ctx, db, leagueAbbr)
	if err != nil {
		return playoffsdomain.Playoff{}, err
	}
	if season == 0 {
		season = league.Season()
	}

	rows, err := s.leagues.ListTeams(ctx, db, league.ID)
	if err != nil {
		return playoffsdomain.Playoff{}, err
	}
	teams := make([]leaguedomain.Team, 0, len(rows))
	for _, t := range rows {
		teams = append(teams, t.ToDomain())
	}
	lookup := leaguedomain.NewTeamLookup(teams)

	domainSeeds := make([]playoffsdomain.Seed, 0, len(seeds))
	for _, in := range seeds {
		team, ok := lookup[in.Team]
		if !ok {
			return playoffsdomain.Playoff{}, fmt.Errorf("%w: %s not in %s", leaguedomain.ErrTeamNotInLeague, in.Team, league.Abbr)
		}
		domainSeeds = append(domainSeeds, playoffsdomain.Seed{Seed: in.Seed, Team: team})
	}
	if err := playoffsdomain.ValidateSeeds(domainSeeds); err != nil {
		return playoffsdomain.Playoff{}, err
	}

	row := &playoffsdb.Playoff{LeagueID: league.ID, Season: season, Kickoff: kickoff.UTC()}
	if err := s.repo.UpsertPlayoff(ctx, db, row); err != nil {
		return playoffsdomain.Playoff{}, err
	}
	seedRows := make([]*playoffsdb.PlayoffTeam, 0, len(domainSeeds))
	for _, sd := range domainSeeds {
		seedRows = append(seedRows, &playoffsdb.PlayoffTeam{TeamID: sd.Team.ID, Seed: sd.Seed})
	}
	if err := s.repo.ReplaceSeeds(ctx, db, row.ID, seedRows); err != nil {
		return playoffsdomain.Playoff{}, err
	}
	return s.loadPlayoff(ctx, db, row.ID)
}

func (s *PlayoffsService) GetPlayoff(ctx context.Context, leagueAbbr string, season int) (playoffsdomain.Playoff, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "GetPlayoff", leagueAbbr,
		func(ctx context.Context) (results.OperationResult[playoffsdomain.Playoff, error], error) {
			league, err := s.loadLeague(ctx, s.db, leagueAbbr)
			if business(err) {
				return fail[playoffsdomain.Playoff](err)
			}
			if err != nil {
				return results.OperationResult[playoffsdomain.Playoff, error]{}, err
			}
			if season == 0 {
				season = league.Season()
			}
			row, err := s.repo.GetPlayoffBySeason(ctx, s.db, league.ID, season)
			if errors.Is(err, playoffsdb.ErrNotFound) {
				return fail[playoffsdomain.Playoff](fmt.Errorf("%w: %s %d", ErrPlayoffNotFound, league.Abbr, season))
			}
			if err != nil {
				return results.OperationResult[playoffsdomain.Playoff, error]{}, err
			}
			return results.SuccessResult[playoffsdomain.Playoff, error](row.ToDomain()), nil
		}))
}

// SavePicks stores a user's bracket. Once the playoff has kicked off the
// bracket is frozen and the call reports saved=false without error.
func (s *PlayoffsService) SavePicks(ctx context.Context, playoffID int64, userID string, payload map[string]string) (bool, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "SavePicks", userID,
		func(ctx context.Context) (results.OperationResult[bool, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
				p, err := s.loadPlayoff(ctx, db, playoffID)
				if business(err) {
					return fail[bool](err)
				}
				if err != nil {
					return results.OperationResult[bool, error]{}, err
				}

				if p.HasStarted(s.clock.Now()) {
					s.logger.InfoContext(ctx, "Playoff picks closed",
						attr.ExtractCorrelationID(ctx),
						attr.PlayoffID(playoffID),
						attr.UserID(userID),
					)
					return results.SuccessResult[bool, error](false), nil
				}

				picks := playoffsdomain.ParseBracketPayload(payload)
				if err := picks.Validate(p.Teams()); err != nil {
					return fail[bool](err)
				}
				uid := userID
				row := &playoffsdb.PlayoffPicks{PlayoffID: playoffID, UserID: &uid, Picks: picks.Payload()}
				if err := s.repo.UpsertUserPicks(ctx, db, row); err != nil {
					return results.OperationResult[bool, error]{}, err
				}
				return results.SuccessResult[bool, error](true), nil
			})
		}))
}

// SaveAdminPicks records the actual bracket as it is decided.
func (s *PlayoffsService) SaveAdminPicks(ctx context.Context, playoffID int64, payload map[string]string) error {
	_, err := unwrap(operation.WithTelemetry(ctx, s.telemetry(), "SaveAdminPicks", strconv.FormatInt(playoffID, 10),
		func(ctx context.Context) (results.OperationResult[bool, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
				p, err := s.loadPlayoff(ctx, db, playoffID)
				if business(err) {
					return fail[bool](err)
				}
				if err != nil {
					return results.OperationResult[bool, error]{}, err
				}
				picks := playoffsdomain.ParseBracketPayload(payload)
				if err := picks.Validate(p.Teams()); err != nil {
					return fail[bool](err)
				}
				row := &playoffsdb.PlayoffPicks{PlayoffID: playoffID, Picks: picks.Payload()}
				if err := s.repo.UpsertAdminPicks(ctx, db, row); err != nil {
					return results.OperationResult[bool, error]{}, err
				}
				return results.SuccessResult[bool, error](true), nil
			})
		}))
	return err
}

// Scores ranks every user bracket against the admin bracket using the
// league's PLAYOFF_SCORE weights. Without an admin bracket nothing scores.
func (s *PlayoffsService) Scores(ctx context.Context, playoffID int64) ([]playoffsdomain.Result, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "Scores", strconv.FormatInt(playoffID, 10),
		func(ctx context.Context) (results.OperationResult[[]playoffsdomain.Result, error], error) {
			p, err := s.loadPlayoff(ctx, s.db, playoffID)
			if business(err) {
				return fail[[]playoffsdomain.Result](err)
			}
			if err != nil {
				return results.OperationResult[[]playoffsdomain.Result, error]{}, err
			}
			leagueRow, err := s.leagues.GetLeague(ctx, s.db, p.LeagueID)
			if err != nil {
				return results.OperationResult[[]playoffsdomain.Result, error]{}, fmt.Errorf("load league %d: %w", p.LeagueID, err)
			}
			league := leagueRow.ToDomain(s.settings)

			var admin playoffsdomain.BracketPicks
			adminRow, err := s.repo.GetAdminPicks(ctx, s.db, playoffID)
			switch {
			case err == nil:
				admin = adminRow.ToDomain()
			case !errors.Is(err, playoffsdb.ErrNotFound):
				return results.OperationResult[[]playoffsdomain.Result, error]{}, err
			}

			rows, err := s.repo.ListUserPicks(ctx, s.db, playoffID)
			if err != nil {
				return results.OperationResult[[]playoffsdomain.Result, error]{}, err
			}
			entries := make([]playoffsdomain.Entry, 0, len(rows))
			for _, r := range rows {
				entries = append(entries, playoffsdomain.Entry{UserID: *r.UserID, Picks: r.ToDomain()})
			}

			scores, err := playoffsdomain.ScorePlayoff(admin, entries, p.Teams(), league.PlayoffWeights())
			if err != nil {
				return fail[[]playoffsdomain.Result](err)
			}
			return results.SuccessResult[[]playoffsdomain.Result, error](scores), nil
		}))
}
