package picksservice

import (
	"context"
	"errors"
	"fmt"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/uptrace/bun"
)

type none struct{}

// SetFavorite records the user's favorite team in a league. An empty
// teamAbbr clears it. A team from another league is rejected.
func (s *PicksService) SetFavorite(ctx context.Context, userID, leagueAbbr, teamAbbr string) error {
	_, err := unwrap(operation.WithTelemetry(ctx, s.telemetry(), "SetFavorite", userID,
		func(ctx context.Context) (results.OperationResult[none, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[none, error], error) {
				league, err := s.loadLeague(ctx, db, leagueAbbr)
				if errors.Is(err, ErrLeagueNotFound) {
					return fail[none](err)
				}
				if err != nil {
					return results.OperationResult[none, error]{}, err
				}

				fav := &picksdb.Favorite{UserID: userID, LeagueID: league.ID}
				if teamAbbr != "" {
					team, err := s.findTeam(ctx, db, league, teamAbbr)
					if errors.Is(err, leaguedomain.ErrTeamNotInLeague) {
						return fail[none](err)
					}
					if err != nil {
						return results.OperationResult[none, error]{}, err
					}
					if team.LeagueID != league.ID {
						return fail[none](fmt.Errorf("%w: %s not in %s", leaguedomain.ErrTeamNotInLeague, team.Abbr, league.Abbr))
					}
					fav.TeamID = &team.ID
				}
				if err := s.repo.UpsertFavorite(ctx, db, fav); err != nil {
					return results.OperationResult[none, error]{}, err
				}
				return results.SuccessResult[none, error](none{}), nil
			})
		}))
	return err
}

// findTeam resolves teamAbbr by abbreviation, name or alias among the
// league's teams.
func (s *PicksService) findTeam(ctx context.Context, db bun.IDB, league leaguedomain.League, teamAbbr string) (leaguedomain.Team, error) {
	rows, err := s.leagues.ListTeams(ctx, db, league.ID)
	if err != nil {
		return leaguedomain.Team{}, err
	}
	teams := make([]leaguedomain.Team, 0, len(rows))
	for _, t := range rows {
		teams = append(teams, t.ToDomain())
	}
	team, ok := leaguedomain.NewTeamLookup(teams)[teamAbbr]
	if !ok {
		return leaguedomain.Team{}, fmt.Errorf("%w: %s not in %s", leaguedomain.ErrTeamNotInLeague, teamAbbr, league.Abbr)
	}
	return team, nil
}

// SetPreference stores the user's autopick preference.
func (s *PicksService) SetPreference(ctx context.Context, userID string, autopick picksdomain.AutopickPreference) error {
	_, err := unwrap(operation.WithTelemetry(ctx, s.telemetry(), "SetPreference", userID,
		func(ctx context.Context) (results.OperationResult[none, error], error) {
			if _, err := picksdomain.ParseAutopick(string(autopick)); err != nil {
				return fail[none](err)
			}
			if err := s.repo.UpsertPreference(ctx, s.db, &picksdb.Preference{UserID: userID, Autopick: string(autopick)}); err != nil {
				return results.OperationResult[none, error]{}, err
			}
			return results.SuccessResult[none, error](none{}), nil
		}))
	return err
}

// JoinGroup makes the user an active member of group, creating the group
// and linking it to the league as needed.
func (s *PicksService) JoinGroup(ctx context.Context, userID, group, leagueAbbr string) error {
	_, err := unwrap(operation.WithTelemetry(ctx, s.telemetry(), "JoinGroup", userID,
		func(ctx context.Context) (results.OperationResult[none, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[none, error], error) {
				row, err := s.leagues.GetLeagueByAbbr(ctx, db, leagueAbbr)
				if errors.Is(err, leaguedb.ErrNotFound) {
					return fail[none](fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueAbbr))
				}
				if err != nil {
					return results.OperationResult[none, error]{}, err
				}

				g := &picksdb.Group{Name: group, Status: string(picksdomain.MembershipActive), Category: "PVT"}
				if err := s.repo.UpsertGroup(ctx, db, g); err != nil {
					return results.OperationResult[none, error]{}, err
				}
				if err := s.repo.AddGroupLeague(ctx, db, g.ID, row.ID); err != nil {
					return results.OperationResult[none, error]{}, err
				}
				m := &picksdb.Membership{UserID: userID, GroupID: g.ID, Status: string(picksdomain.MembershipActive)}
				if err := s.repo.UpsertMembership(ctx, db, m); err != nil {
					return results.OperationResult[none, error]{}, err
				}
				return results.SuccessResult[none, error](none{}), nil
			})
		}))
	return err
}
