package leagueservice

import (
	"context"
	"fmt"
	"time"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/uptrace/bun"
)

// ImportSeason upserts a league's teams, gamesets and games. Re-importing the
// same season corrects windows and kickoff times; recorded picks, results and
// gameset points are left alone.
func (s *LeagueService) ImportSeason(ctx context.Context, schedule SeasonSchedule) (ImportSummary, error) {
	return unwrap(operation.WithTelemetry(ctx, s.telemetry(), "ImportSeason", schedule.League.Abbr,
		func(ctx context.Context) (results.OperationResult[ImportSummary, error], error) {
			return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[ImportSummary, error], error) {
				return s.importSeasonLogic(ctx, db, schedule)
			})
		}))
}

func (s *LeagueService) importSeasonLogic(ctx context.Context, db bun.IDB, schedule SeasonSchedule) (results.OperationResult[ImportSummary, error], error) {
	fail := func(err error) (results.OperationResult[ImportSummary, error], error) {
		return results.OperationResult[ImportSummary, error]{}, err
	}

	// Validate everything before the first write.
	for _, t := range schedule.Teams {
		if err := leaguedomain.ValidateAbbr(t.Abbr); err != nil {
			return fail(err)
		}
	}
	if schedule.Season == 0 {
		return fail(fmt.Errorf("season is required"))
	}

	leagueRow := &leaguedb.League{
		Name:            schedule.League.Name,
		Abbr:            schedule.League.Abbr,
		Slug:            schedule.League.Slug,
		CurrentSeason:   schedule.Season,
		AvgGameDuration: schedule.League.AvgGameDuration,
	}
	if leagueRow.Slug == "" {
		leagueRow.Slug = leagueRow.Abbr
	}
	if leagueRow.AvgGameDuration == 0 {
		leagueRow.AvgGameDuration = int(leaguedomain.DefaultGameDuration / time.Minute)
	}
	if err := s.repo.UpsertLeague(ctx, db, leagueRow); err != nil {
		return fail(err)
	}
	league := leagueRow.ToDomain(s.settings)

	conferences := map[string]*leaguedb.Conference{}
	divisions := map[string]*leaguedb.Division{}
	for _, entry := range schedule.Teams {
		team := &leaguedb.Team{
			LeagueID: league.ID,
			Abbr:     entry.Abbr,
			Name:     entry.Name,
			Nickname: entry.Nickname,
			Aliases:  entry.Aliases,
		}
		if entry.Conference != "" {
			conf, ok := conferences[entry.Conference]
			if !ok {
				conf = &leaguedb.Conference{LeagueID: league.ID, Name: entry.Conference, Abbr: entry.Conference}
				if err := s.repo.UpsertConference(ctx, db, conf); err != nil {
					return fail(err)
				}
				conferences[entry.Conference] = conf
			}
			team.ConferenceID = &conf.ID

			if entry.Division != "" {
				key := entry.Conference + "/" + entry.Division
				div, ok := divisions[key]
				if !ok {
					div = &leaguedb.Division{ConferenceID: conf.ID, Name: entry.Division}
					if err := s.repo.UpsertDivision(ctx, db, div); err != nil {
						return fail(err)
					}
					divisions[key] = div
				}
				team.DivisionID = &div.ID
			}
		}
		if err := s.repo.UpsertTeam(ctx, db, team); err != nil {
			return fail(err)
		}
	}

	teamRows, err := s.repo.ListTeams(ctx, db, league.ID)
	if err != nil {
		return fail(err)
	}
	teams := make([]leaguedomain.Team, 0, len(teamRows))
	for _, t := range teamRows {
		teams = append(teams, t.ToDomain())
	}
	lookup := leaguedomain.NewTeamLookup(teams)
	resolve := func(name string) (int64, error) {
		t, ok := lookup[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q in league %s", ErrUnknownTeam, name, league.Abbr)
		}
		return t.ID, nil
	}

	summary := ImportSummary{LeagueID: league.ID, Teams: len(schedule.Teams)}
	duration := league.GameSetDuration()
	for _, entry := range schedule.GameSets {
		closes := entry.Opens.Add(duration)
		if entry.Closes != nil {
			closes = *entry.Closes
		}
		gs := &leaguedb.GameSet{
			LeagueID: league.ID,
			Season:   schedule.Season,
			Sequence: entry.Sequence,
			Opens:    entry.Opens,
			Closes:   closes,
		}
		if err := s.repo.UpsertGameSet(ctx, db, gs); err != nil {
			return fail(err)
		}

		byes := make([]int64, 0, len(entry.Byes))
		for _, name := range entry.Byes {
			id, err := resolve(name)
			if err != nil {
				return fail(err)
			}
			byes = append(byes, id)
		}
		if err := s.repo.ReplaceByes(ctx, db, gs.ID, byes); err != nil {
			return fail(err)
		}

		for _, g := range entry.Games {
			homeID, err := resolve(g.Home)
			if err != nil {
				return fail(err)
			}
			awayID, err := resolve(g.Away)
			if err != nil {
				return fail(err)
			}
			game := &leaguedb.Game{
				GameSetID: gs.ID,
				HomeID:    homeID,
				AwayID:    awayID,
				StartTime: g.Start,
				Location:  g.Location,
			}
			if err := s.repo.UpsertGame(ctx, db, game); err != nil {
				return fail(err)
			}
			summary.Games++
		}

		summary.GameSets = append(summary.GameSets, ImportedGameSet{
			ID:       gs.ID,
			Sequence: gs.Sequence,
			Opens:    gs.Opens,
			Closes:   gs.Closes,
		})
	}

	s.logger.InfoContext(ctx, "Season imported",
		attr.ExtractCorrelationID(ctx),
		attr.League(league.Abbr),
		attr.Int("season", schedule.Season),
		attr.Int("gamesets", len(summary.GameSets)),
		attr.Int("games", summary.Games),
	)
	return results.SuccessResult[ImportSummary, error](summary), nil
}
