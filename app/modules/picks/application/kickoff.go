package picksservice

import (
	"context"
	"errors"
	"strconv"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/uptrace/bun"
)

// Kickoff prepares every active participant's picks for a gameset. With
// FORCE_AUTOPICK everyone is autopicked at random; otherwise each
// participant's preference decides. Participants without a pickset only get
// one when every configured participation hook accepts them.
func (s *PicksService) Kickoff(ctx context.Context, gamesetID int64) (KickoffSummary, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "Kickoff", strconv.FormatInt(gamesetID, 10),
		func(ctx context.Context) (results.OperationResult[KickoffSummary, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[KickoffSummary, error], error) {
				return s.kickoffLogic(ctx, db, gamesetID)
			})
		}))
}

func (s *PicksService) kickoffLogic(ctx context.Context, db bun.IDB, gamesetID int64) (results.OperationResult[KickoffSummary, error], error) {
	gs, league, err := s.loadGameSet(ctx, db, gamesetID)
	if errors.Is(err, ErrGameSetNotFound) {
		return fail[KickoffSummary](err)
	}
	if err != nil {
		return results.OperationResult[KickoffSummary, error]{}, err
	}

	// Unknown hook names are a configuration error, not a business failure.
	hooks, err := picksdomain.ResolveHooks(league.ParticipationHooks())
	if err != nil {
		return results.OperationResult[KickoffSummary, error]{}, err
	}

	rows, err := s.repo.ListParticipants(ctx, db, league.ID)
	if err != nil {
		return results.OperationResult[KickoffSummary, error]{}, err
	}

	force := league.ForceAutopick()
	summary := KickoffSummary{Participants: len(rows)}
	for _, row := range rows {
		p := row.ToDomain()
		auto := force || p.Autopick.ShouldAutopick()
		strategy := picksdomain.StrategyUser
		switch {
		case force:
			strategy = picksdomain.StrategyRandom
		case auto:
			strategy = p.Autopick.Strategy()
		}

		existing, err := s.repo.GetPickSet(ctx, db, gs.ID, p.UserID)
		switch {
		case err == nil:
			n, err := s.completeExisting(ctx, db, league, gs, existing, strategy, auto)
			if err != nil {
				return results.OperationResult[KickoffSummary, error]{}, err
			}
			summary.Completed++
			summary.Autopicks += n
			continue
		case !errors.Is(err, picksdb.ErrNotFound):
			return results.OperationResult[KickoffSummary, error]{}, err
		}

		if !picksdomain.Participates(hooks, p, gs) {
			summary.Declined++
			continue
		}
		out, err := s.ensurePicks(ctx, db, league, gs, p.UserID, strategy, auto)
		if err != nil {
			return results.OperationResult[KickoffSummary, error]{}, err
		}
		summary.Created++
		summary.Autopicks += out.autopicks
	}

	s.logger.InfoContext(ctx, "Gameset kicked off",
		attr.ExtractCorrelationID(ctx),
		attr.League(league.Abbr),
		attr.GameSetID(gs.ID),
		attr.Int("participants", summary.Participants),
		attr.Int("created", summary.Created),
		attr.Int("completed", summary.Completed),
		attr.Int("declined", summary.Declined),
		attr.Int("autopicks", summary.Autopicks),
	)
	return results.SuccessResult[KickoffSummary, error](summary), nil
}

// completeExisting fills the gaps of a pickset the user already started.
// Its stored strategy is left as is.
func (s *PicksService) completeExisting(
	ctx context.Context,
	db bun.IDB,
	league leaguedomain.League,
	gs leaguedomain.GameSet,
	row *picksdb.PickSet,
	strategy picksdomain.Strategy,
	auto bool,
) (int, error) {
	var picker picksdomain.Autopicker
	if auto {
		var err error
		if picker, err = s.autopicker(ctx, db, league, gs, strategy); err != nil {
			return 0, err
		}
	}
	n, err := s.completePicks(ctx, db, row, gs, picker)
	if err != nil {
		return 0, err
	}
	if n > 0 && s.metrics != nil {
		s.metrics.RecordAutopicks(ctx, league.Abbr, n)
	}
	return n, nil
}
