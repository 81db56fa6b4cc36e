package picksservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/Black-And-White-Club/picker-bot/app/eventbus"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/uptrace/bun"
)

type ensureResult struct {
	pickset   picksdomain.PickSet
	autopicks int
}

// EnsurePicks gets or creates the user's pickset for a gameset and adds a
// pick for every game that lacks one. With autopick set, a new pickset gets
// a random points guess and new picks get a winner from strategy.
func (s *PicksService) EnsurePicks(ctx context.Context, gamesetID int64, userID string, strategy picksdomain.Strategy, autopick bool) (picksdomain.PickSet, error) {
	res, err := operation.WithTelemetry(ctx, s.telemetry(), "EnsurePicks", userID,
		func(ctx context.Context) (results.OperationResult[ensureResult, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[ensureResult, error], error) {
				gs, league, err := s.loadGameSet(ctx, db, gamesetID)
				if errors.Is(err, ErrGameSetNotFound) {
					return fail[ensureResult](err)
				}
				if err != nil {
					return results.OperationResult[ensureResult, error]{}, err
				}
				out, err := s.ensurePicks(ctx, db, league, gs, userID, strategy, autopick)
				if err != nil {
					return results.OperationResult[ensureResult, error]{}, err
				}
				return results.SuccessResult[ensureResult, error](out), nil
			})
		})
	out, err := unwrap(res, err)
	if err != nil {
		return picksdomain.PickSet{}, err
	}
	if out.autopicks > 0 {
		s.notify(ctx, eventbus.PicksUpdated{
			PickSetID: out.pickset.ID,
			GameSetID: gamesetID,
			UserID:    userID,
			AutoPick:  true,
			Changed:   out.autopicks,
		})
	}
	return out.pickset, nil
}

func (s *PicksService) ensurePicks(
	ctx context.Context,
	db bun.IDB,
	league leaguedomain.League,
	gs leaguedomain.GameSet,
	userID string,
	strategy picksdomain.Strategy,
	autopick bool,
) (ensureResult, error) {
	if strategy == "" {
		strategy = picksdomain.StrategyUser
	}
	if _, err := picksdomain.ParseStrategy(string(strategy)); err != nil {
		return ensureResult{}, err
	}

	row, created, err := s.getOrCreatePickSet(ctx, db, gs.ID, userID, strategy)
	if err != nil {
		return ensureResult{}, err
	}
	if created && autopick {
		pts, err := s.randomPoints(ctx, db, league.ID)
		if err != nil {
			return ensureResult{}, err
		}
		if err := s.repo.UpdatePickSetPoints(ctx, db, row.ID, pts); err != nil {
			return ensureResult{}, err
		}
	}

	var picker picksdomain.Autopicker
	if autopick {
		if picker, err = s.autopicker(ctx, db, league, gs, strategy); err != nil {
			return ensureResult{}, err
		}
	}
	n, err := s.completePicks(ctx, db, row, gs, picker)
	if err != nil {
		return ensureResult{}, err
	}
	if n > 0 && s.metrics != nil {
		s.metrics.RecordAutopicks(ctx, league.Abbr, n)
	}

	row, err = s.repo.GetPickSet(ctx, db, gs.ID, userID)
	if err != nil {
		return ensureResult{}, err
	}
	return ensureResult{pickset: row.ToDomain(), autopicks: n}, nil
}

// getOrCreatePickSet returns the (user, gameset) pickset, creating it with
// strategy when missing. A concurrent creator wins and its row is returned.
func (s *PicksService) getOrCreatePickSet(ctx context.Context, db bun.IDB, gamesetID int64, userID string, strategy picksdomain.Strategy) (*picksdb.PickSet, bool, error) {
	row, err := s.repo.GetPickSet(ctx, db, gamesetID, userID)
	if err == nil {
		return row, false, nil
	}
	if !errors.Is(err, picksdb.ErrNotFound) {
		return nil, false, err
	}

	row = &picksdb.PickSet{UserID: userID, GameSetID: gamesetID, Strategy: string(strategy)}
	created, err := s.repo.CreatePickSet(ctx, db, row)
	if err != nil {
		return nil, false, err
	}
	if !created {
		row, err = s.repo.GetPickSet(ctx, db, gamesetID, userID)
		if err != nil {
			return nil, false, err
		}
	}
	return row, created, nil
}

// completePicks adds a pick for every game row lacks. Games that have
// already started get an undecided pick. It returns how many winners the
// picker chose.
func (s *PicksService) completePicks(ctx context.Context, db bun.IDB, row *picksdb.PickSet, gs leaguedomain.GameSet, picker picksdomain.Autopicker) (int, error) {
	picked := make(map[int64]bool, len(row.Picks))
	for _, p := range row.Picks {
		picked[p.GameID] = true
	}

	now := s.clock.Now()
	var (
		missing   []*picksdb.GamePick
		autopicks int
	)
	for _, g := range gs.Games {
		if picked[g.ID] {
			continue
		}
		pick := &picksdb.GamePick{PickSetID: row.ID, GameID: g.ID}
		if picker != nil && !g.HasStarted(now) {
			pick.SetWinner(picker(g))
			autopicks++
		}
		missing = append(missing, pick)
	}
	if err := s.repo.InsertGamePicks(ctx, db, missing); err != nil {
		return 0, err
	}
	return autopicks, nil
}

type updateOutcome struct {
	result    UpdateResult
	pickSetID int64
}

// UpdatePicks records a user's winners and points guess. Picks on games that
// have started are skipped without error. The whole request is rejected when
// any entry names a game outside the gameset, a team outside its game, or a
// tie the league does not allow.
func (s *PicksService) UpdatePicks(ctx context.Context, gamesetID int64, userID string, winners map[int64]leaguedomain.WinnerRef, points *int) (UpdateResult, error) {
	res, err := operation.WithTelemetry(ctx, s.telemetry(), "UpdatePicks", userID,
		func(ctx context.Context) (results.OperationResult[updateOutcome, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[updateOutcome, error], error) {
				return s.updatePicksLogic(ctx, db, gamesetID, userID, winners, points)
			})
		})
	out, err := unwrap(res, err)
	if err != nil {
		return UpdateResult{}, err
	}
	if out.result.Changed > 0 {
		s.notify(ctx, eventbus.PicksUpdated{
			PickSetID: out.pickSetID,
			GameSetID: gamesetID,
			UserID:    userID,
			Changed:   out.result.Changed,
		})
	}
	return out.result, nil
}

func (s *PicksService) updatePicksLogic(
	ctx context.Context,
	db bun.IDB,
	gamesetID int64,
	userID string,
	winners map[int64]leaguedomain.WinnerRef,
	points *int,
) (results.OperationResult[updateOutcome, error], error) {
	gs, league, err := s.loadGameSet(ctx, db, gamesetID)
	if errors.Is(err, ErrGameSetNotFound) {
		return fail[updateOutcome](err)
	}
	if err != nil {
		return results.OperationResult[updateOutcome, error]{}, err
	}

	gameIDs := make([]int64, 0, len(winners))
	for id := range winners {
		gameIDs = append(gameIDs, id)
	}
	slices.Sort(gameIDs)

	for _, id := range gameIDs {
		g, ok := gs.Game(id)
		if !ok {
			return fail[updateOutcome](fmt.Errorf("%w: game %d", picksdomain.ErrGameNotInGameSet, id))
		}
		if err := picksdomain.ValidatePick(g, winners[id], league.AllowTies()); err != nil {
			return fail[updateOutcome](fmt.Errorf("game %d (%s): %w", id, g.ShortDescription(), err))
		}
	}
	if points != nil && *points < 0 {
		return fail[updateOutcome](fmt.Errorf("points guess must not be negative: %d", *points))
	}

	row, _, err := s.getOrCreatePickSet(ctx, db, gs.ID, userID, picksdomain.StrategyUser)
	if err != nil {
		return results.OperationResult[updateOutcome, error]{}, err
	}

	existing := make(map[int64]*picksdb.GamePick, len(row.Picks))
	for _, p := range row.Picks {
		existing[p.GameID] = p
	}

	// Kickoff is checked against the clock inside the transaction.
	now := s.clock.Now()
	var (
		out     UpdateResult
		inserts []*picksdb.GamePick
	)
	for _, id := range gameIDs {
		g, _ := gs.Game(id)
		if g.HasStarted(now) {
			out.Skipped = append(out.Skipped, id)
			continue
		}
		w := winners[id]
		pick, ok := existing[id]
		if !ok {
			pick = &picksdb.GamePick{PickSetID: row.ID, GameID: id}
			pick.SetWinner(w)
			inserts = append(inserts, pick)
			out.Changed++
			continue
		}
		if pick.Winner() == w {
			continue
		}
		pick.SetWinner(w)
		if err := s.repo.UpdateGamePick(ctx, db, pick); err != nil {
			return results.OperationResult[updateOutcome, error]{}, err
		}
		out.Changed++
	}
	if err := s.repo.InsertGamePicks(ctx, db, inserts); err != nil {
		return results.OperationResult[updateOutcome, error]{}, err
	}

	if points != nil {
		if err := s.repo.UpdatePickSetPoints(ctx, db, row.ID, *points); err != nil {
			return results.OperationResult[updateOutcome, error]{}, err
		}
		if *points != row.Points {
			out.Changed++
		}
	}

	if len(out.Skipped) > 0 {
		s.logger.InfoContext(ctx, "Skipped picks on started games",
			attr.ExtractCorrelationID(ctx),
			attr.GameSetID(gs.ID),
			attr.UserID(userID),
			attr.String("games", formatIDs(out.Skipped)),
		)
	}

	stored, err := s.repo.GetPickSet(ctx, db, gs.ID, userID)
	if err != nil {
		return results.OperationResult[updateOutcome, error]{}, err
	}
	out.PickSet = stored.ToDomain()
	return results.SuccessResult[updateOutcome, error](updateOutcome{result: out, pickSetID: stored.ID}), nil
}

func formatIDs(ids []int64) string {
	var b []byte
	for i, id := range ids {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, id, 10)
	}
	return string(b)
}
