package leaguedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new league repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// RegisterModels registers the m2m join models with db.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*GameSetBye)(nil))
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetLeague(ctx context.Context, db bun.IDB, id int64) (*League, error) {
	league := new(League)
	err := r.resolveDB(db).NewSelect().Model(league).Where("l.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaguedb.GetLeague: %w", err)
	}
	return league, nil
}

func (r *Impl) GetLeagueByAbbr(ctx context.Context, db bun.IDB, abbr string) (*League, error) {
	league := new(League)
	err := r.resolveDB(db).NewSelect().Model(league).Where("lower(l.abbr) = lower(?)", abbr).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaguedb.GetLeagueByAbbr: %w", err)
	}
	return league, nil
}

func (r *Impl) UpsertLeague(ctx context.Context, db bun.IDB, league *League) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(league).
		On("CONFLICT (abbr) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("slug = EXCLUDED.slug").
		Set("current_season = EXCLUDED.current_season").
		Set("avg_game_duration = EXCLUDED.avg_game_duration").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.UpsertLeague: %w", err)
	}
	return nil
}

func (r *Impl) ListTeams(ctx context.Context, db bun.IDB, leagueID int64) ([]*Team, error) {
	var teams []*Team
	err := r.resolveDB(db).NewSelect().
		Model(&teams).
		Where("t.league_id = ?", leagueID).
		Order("t.abbr ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.ListTeams: %w", err)
	}
	return teams, nil
}

func (r *Impl) UpsertTeam(ctx context.Context, db bun.IDB, team *Team) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(team).
		On("CONFLICT (league_id, abbr) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("nickname = EXCLUDED.nickname").
		Set("aliases = EXCLUDED.aliases").
		Set("conference_id = EXCLUDED.conference_id").
		Set("division_id = EXCLUDED.division_id").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.UpsertTeam: %w", err)
	}
	return nil
}

func (r *Impl) UpsertConference(ctx context.Context, db bun.IDB, conf *Conference) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(conf).
		On("CONFLICT (league_id, abbr) DO UPDATE").
		Set("name = EXCLUDED.name").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.UpsertConference: %w", err)
	}
	return nil
}

func (r *Impl) UpsertDivision(ctx context.Context, db bun.IDB, div *Division) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(div).
		On("CONFLICT (conference_id, name) DO UPDATE").
		Set("name = EXCLUDED.name").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.UpsertDivision: %w", err)
	}
	return nil
}

// GetGameSet loads a gameset with its games (chronological) and byes.
func (r *Impl) GetGameSet(ctx context.Context, db bun.IDB, id int64) (*GameSet, error) {
	gs := new(GameSet)
	err := r.resolveDB(db).NewSelect().
		Model(gs).
		Relation("Games", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("g.start_time ASC", "g.id ASC")
		}).
		Relation("Games.Home").
		Relation("Games.Away").
		Relation("Byes").
		Where("gs.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaguedb.GetGameSet: %w", err)
	}
	return gs, nil
}

func (r *Impl) LockGameSet(ctx context.Context, db bun.IDB, id int64) error {
	var locked int64
	err := r.resolveDB(db).NewSelect().
		Model((*GameSet)(nil)).
		Column("gs.id").
		Where("gs.id = ?", id).
		For("UPDATE").
		Scan(ctx, &locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("leaguedb.LockGameSet: %w", err)
	}
	return nil
}

// ListGameSets returns a league's gamesets without games. A zero season lists all seasons.
func (r *Impl) ListGameSets(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*GameSet, error) {
	var sets []*GameSet
	q := r.resolveDB(db).NewSelect().
		Model(&sets).
		Where("gs.league_id = ?", leagueID).
		Order("gs.season ASC", "gs.sequence ASC")
	if season != 0 {
		q = q.Where("gs.season = ?", season)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("leaguedb.ListGameSets: %w", err)
	}
	return sets, nil
}

// UpsertGameSet inserts or corrects the window of a gameset. Points are never
// overwritten by an upsert.
func (r *Impl) UpsertGameSet(ctx context.Context, db bun.IDB, gs *GameSet) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(gs).
		ExcludeColumn("points").
		On("CONFLICT (league_id, season, sequence) DO UPDATE").
		Set("opens = EXCLUDED.opens").
		Set("closes = EXCLUDED.closes").
		Returning("id, points").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.UpsertGameSet: %w", err)
	}
	return nil
}

func (r *Impl) SetGameSetPoints(ctx context.Context, db bun.IDB, id int64, points int) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*GameSet)(nil)).
		Set("points = ?", points).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.SetGameSetPoints: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) ReplaceByes(ctx context.Context, db bun.IDB, gamesetID int64, teamIDs []int64) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*GameSetBye)(nil)).Where("gameset_id = ?", gamesetID).Exec(ctx); err != nil {
		return fmt.Errorf("leaguedb.ReplaceByes: %w", err)
	}
	if len(teamIDs) == 0 {
		return nil
	}
	byes := make([]*GameSetBye, 0, len(teamIDs))
	for _, id := range teamIDs {
		byes = append(byes, &GameSetBye{GameSetID: gamesetID, TeamID: id})
	}
	if _, err := db.NewInsert().Model(&byes).Exec(ctx); err != nil {
		return fmt.Errorf("leaguedb.ReplaceByes: %w", err)
	}
	return nil
}

// UpsertGame inserts a game or corrects its kickoff and location. Status and
// scores are only written through UpdateGameResult.
func (r *Impl) UpsertGame(ctx context.Context, db bun.IDB, game *Game) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(game).
		ExcludeColumn("status", "home_score", "away_score").
		On("CONFLICT (gameset_id, home_id, away_id) DO UPDATE").
		Set("start_time = EXCLUDED.start_time").
		Set("location = EXCLUDED.location").
		Returning("id, status").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.UpsertGame: %w", err)
	}
	return nil
}

func (r *Impl) UpdateGameResult(ctx context.Context, db bun.IDB, game *Game) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model(game).
		Column("status", "home_score", "away_score").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.UpdateGameResult: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) ListSeasonGames(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*Game, error) {
	var games []*Game
	err := r.resolveDB(db).NewSelect().
		Model(&games).
		Join("JOIN gamesets AS gs ON gs.id = g.gameset_id").
		Where("gs.league_id = ?", leagueID).
		Where("gs.season = ?", season).
		Order("g.start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.ListSeasonGames: %w", err)
	}
	return games, nil
}

func (r *Impl) PointsStats(ctx context.Context, db bun.IDB, leagueID int64) (PointsStats, error) {
	var stats PointsStats
	err := r.resolveDB(db).NewSelect().
		Model((*GameSet)(nil)).
		ColumnExpr("count(*) AS n").
		ColumnExpr("coalesce(avg(gs.points), 0)::float8 AS avg").
		ColumnExpr("coalesce(stddev(gs.points), 0)::float8 AS stddev").
		Where("gs.league_id = ?", leagueID).
		Where("gs.points > 0").
		Scan(ctx, &stats)
	if err != nil {
		return PointsStats{}, fmt.Errorf("leaguedb.PointsStats: %w", err)
	}
	return stats, nil
}
