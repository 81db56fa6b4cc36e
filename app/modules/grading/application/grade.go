package gradingservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Black-And-White-Club/picker-bot/app/eventbus"
	gradingdomain "github.com/Black-And-White-Club/picker-bot/app/modules/grading/domain"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
	standingsdomain "github.com/Black-And-White-Club/picker-bot/app/modules/standings/domain"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/uptrace/bun"
)

// gradingPass is what UpdateResults commits, plus what the event needs.
type gradingPass struct {
	summary  Summary
	league   string
	season   int
	sequence int
	regraded bool
}

// UpdateResults applies provider results to a gameset. Only unplayed games
// are decided, so a repeated pass is a no-op. Once the last game is over the
// gameset's tiebreaker points are recorded, and every pickset is regraded
// whenever anything changed.
func (s *GradingService) UpdateResults(ctx context.Context, gamesetID int64, res *gradingdomain.Results) (Summary, error) {
	unlock := s.locks.Lock(gamesetID)
	defer unlock()

	pass, err := unwrap(operation.WithTelemetry(ctx, s.telemetry(), "UpdateResults", strconv.FormatInt(gamesetID, 10),
		func(ctx context.Context) (results.OperationResult[gradingPass, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[gradingPass, error], error) {
				return s.updateResultsLogic(ctx, db, gamesetID, res)
			})
		}))
	if err != nil {
		return Summary{}, err
	}

	if pass.regraded {
		s.notify(ctx, eventbus.ResultsGraded{
			GameSetID: gamesetID,
			League:    pass.league,
			Season:    pass.season,
			Sequence:  pass.sequence,
			Updated:   pass.summary.Updated,
			Points:    pass.summary.Points,
			Winners:   pass.summary.Winners,
		})
	}
	return pass.summary, nil
}

func (s *GradingService) updateResultsLogic(ctx context.Context, db bun.IDB, gamesetID int64, res *gradingdomain.Results) (results.OperationResult[gradingPass, error], error) {
	if err := s.leagues.LockGameSet(ctx, db, gamesetID); err != nil {
		if errors.Is(err, leaguedb.ErrNotFound) {
			return fail[gradingPass](fmt.Errorf("%w: %d", ErrGameSetNotFound, gamesetID))
		}
		return results.OperationResult[gradingPass, error]{}, err
	}
	row, err := s.leagues.GetGameSet(ctx, db, gamesetID)
	if err != nil {
		return results.OperationResult[gradingPass, error]{}, err
	}
	leagueRow, err := s.leagues.GetLeague(ctx, db, row.LeagueID)
	if err != nil {
		return results.OperationResult[gradingPass, error]{}, fmt.Errorf("load league %d: %w", row.LeagueID, err)
	}
	gs, league := row.ToDomain(), leagueRow.ToDomain(s.settings)

	pass := gradingPass{
		summary:  Summary{GameSetID: gs.ID, Points: gs.Points},
		league:   league.Abbr,
		season:   gs.Season,
		sequence: gs.Sequence,
	}

	if err := res.Check(gs); err != nil {
		return fail[gradingPass](err)
	}

	completed := res.Completed()
	if len(completed) == 0 {
		return results.SuccessResult[gradingPass, error](pass), nil
	}

	changed, err := gradingdomain.Apply(&gs, completed)
	if err != nil {
		return results.OperationResult[gradingPass, error]{}, err
	}
	for _, g := range changed {
		err := s.leagues.UpdateGameResult(ctx, db, &leaguedb.Game{
			ID:        g.ID,
			Status:    string(g.Status),
			HomeScore: g.HomeScore,
			AwayScore: g.AwayScore,
		})
		if err != nil {
			return results.OperationResult[gradingPass, error]{}, err
		}
	}
	pass.summary.Updated = len(changed)

	pointsSet := false
	if points, ok := gradingdomain.FinalPoints(gs, completed, s.clock.Now(), league.GameDuration()); ok {
		if err := s.leagues.SetGameSetPoints(ctx, db, gs.ID, points); err != nil {
			return results.OperationResult[gradingPass, error]{}, err
		}
		gs.Points = points
		pass.summary.Points = points
		pointsSet = true
	}

	if pass.summary.Updated > 0 || pointsSet {
		winners, err := s.regrade(ctx, db, gs)
		if err != nil {
			return results.OperationResult[gradingPass, error]{}, err
		}
		pass.summary.Winners = winners
		pass.regraded = true
	}

	if s.metrics != nil {
		s.metrics.RecordGamesGraded(ctx, league.Abbr, len(changed))
	}
	s.logger.InfoContext(ctx, "Results applied",
		attr.ExtractCorrelationID(ctx),
		attr.League(league.Abbr),
		attr.GameSetID(gs.ID),
		attr.Int("updated", pass.summary.Updated),
		attr.Int("points", pass.summary.Points),
		attr.Bool("points_set", pointsSet),
	)
	return results.SuccessResult[gradingPass, error](pass), nil
}

// regrade recomputes every pickset of gs in one batch and returns the
// winning users.
func (s *GradingService) regrade(ctx context.Context, db bun.IDB, gs leaguedomain.GameSet) ([]string, error) {
	rows, err := s.picks.ListGameSetPickSets(ctx, db, gs.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	picksets := make([]picksdomain.PickSet, 0, len(rows))
	for _, row := range rows {
		picksets = append(picksets, row.ToDomain())
	}
	graded, ranked := standingsdomain.Grade(picksets, gs)
	for i, ps := range graded {
		rows[i].Correct, rows[i].Wrong, rows[i].IsWinner = ps.Correct, ps.Wrong, ps.IsWinner
	}
	if err := s.picks.UpdatePickSetStatuses(ctx, db, rows); err != nil {
		return nil, err
	}

	var winners []string
	for _, r := range ranked {
		if r.Item.PickSet.IsWinner {
			winners = append(winners, r.Item.PickSet.UserID)
		}
	}
	return winners, nil
}

// GradeLeague fetches results for the league's current gameset and applies
// them. Nothing published yet is not an error.
func (s *GradingService) GradeLeague(ctx context.Context, leagueAbbr string) (Summary, error) {
	if s.feed == nil {
		return Summary{}, errors.New("grading: no results feed configured")
	}

	league, gs, err := s.currentGameSet(ctx, leagueAbbr)
	if err != nil {
		return Summary{}, err
	}

	res, err := s.feed.Fetch(ctx, league, gs)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch results for %s: %w", league.Abbr, err)
	}
	if res == nil {
		s.logger.InfoContext(ctx, "No results published yet",
			attr.ExtractCorrelationID(ctx),
			attr.League(league.Abbr),
			attr.GameSetID(gs.ID),
		)
		return Summary{GameSetID: gs.ID, Points: gs.Points}, nil
	}
	return s.UpdateResults(ctx, gs.ID, res)
}

func (s *GradingService) currentGameSet(ctx context.Context, leagueAbbr string) (leaguedomain.League, leaguedomain.GameSet, error) {
	row, err := s.leagues.GetLeagueByAbbr(ctx, s.db, leagueAbbr)
	if err != nil {
		if errors.Is(err, leaguedb.ErrNotFound) {
			return leaguedomain.League{}, leaguedomain.GameSet{}, fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueAbbr)
		}
		return leaguedomain.League{}, leaguedomain.GameSet{}, err
	}
	league := row.ToDomain(s.settings)

	sets, err := s.leagues.ListGameSets(ctx, s.db, league.ID, league.Season())
	if err != nil {
		return leaguedomain.League{}, leaguedomain.GameSet{}, err
	}
	candidates := make([]leaguedomain.GameSet, 0, len(sets))
	for _, gs := range sets {
		candidates = append(candidates, gs.ToDomain())
	}
	gs, ok := leaguedomain.CurrentGameSet(candidates, s.clock.Now())
	if !ok {
		return leaguedomain.League{}, leaguedomain.GameSet{}, fmt.Errorf("%w: %s", ErrNoGameSet, league.Abbr)
	}
	return league, gs, nil
}
