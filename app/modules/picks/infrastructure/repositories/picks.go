package picksdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new picks repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetPickSet(ctx context.Context, db bun.IDB, gamesetID int64, userID string) (*PickSet, error) {
	ps := new(PickSet)
	err := r.resolveDB(db).NewSelect().
		Model(ps).
		Relation("Picks", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("gp.game_id ASC")
		}).
		Where("ps.gameset_id = ?", gamesetID).
		Where("ps.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("picksdb.GetPickSet: %w", err)
	}
	return ps, nil
}

func (r *Impl) CreatePickSet(ctx context.Context, db bun.IDB, ps *PickSet) (bool, error) {
	res, err := r.resolveDB(db).NewInsert().
		Model(ps).
		ExcludeColumn("correct", "wrong", "is_winner").
		On("CONFLICT (user_id, gameset_id) DO NOTHING").
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("picksdb.CreatePickSet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("picksdb.CreatePickSet: %w", err)
	}
	return n == 1, nil
}

func (r *Impl) UpdatePickSetPoints(ctx context.Context, db bun.IDB, id int64, points int) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*PickSet)(nil)).
		Set("points = ?", points).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.UpdatePickSetPoints: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) ListGameSetPickSets(ctx context.Context, db bun.IDB, gamesetID int64) ([]*PickSet, error) {
	var picksets []*PickSet
	err := r.resolveDB(db).NewSelect().
		Model(&picksets).
		Relation("Picks").
		Where("ps.gameset_id = ?", gamesetID).
		Order("ps.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("picksdb.ListGameSetPickSets: %w", err)
	}
	return picksets, nil
}

func (r *Impl) UpdatePickSetStatuses(ctx context.Context, db bun.IDB, picksets []*PickSet) error {
	if len(picksets) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	values := db.NewValues(&picksets).Column("id", "correct", "wrong", "is_winner")
	_, err := db.NewUpdate().
		With("_data", values).
		Model((*PickSet)(nil)).
		TableExpr("_data").
		Set("correct = _data.correct").
		Set("wrong = _data.wrong").
		Set("is_winner = _data.is_winner").
		Where("ps.id = _data.id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.UpdatePickSetStatuses: %w", err)
	}
	return nil
}

func (r *Impl) ListSeasonPickSets(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*SeasonPickSet, error) {
	var rows []*SeasonPickSet
	q := r.resolveDB(db).NewSelect().
		Model(&rows).
		ModelTableExpr("picksets AS ps").
		ColumnExpr("ps.*").
		ColumnExpr("gs.sequence AS sequence").
		ColumnExpr("gs.points AS gameset_points").
		Join("JOIN gamesets AS gs ON gs.id = ps.gameset_id").
		Where("gs.league_id = ?", leagueID).
		Order("gs.season ASC", "gs.sequence ASC", "ps.user_id ASC")
	if season != 0 {
		q = q.Where("gs.season = ?", season)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("picksdb.ListSeasonPickSets: %w", err)
	}
	return rows, nil
}

func (r *Impl) InsertGamePicks(ctx context.Context, db bun.IDB, picks []*GamePick) error {
	if len(picks) == 0 {
		return nil
	}
	_, err := r.resolveDB(db).NewInsert().
		Model(&picks).
		On("CONFLICT (pickset_id, game_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.InsertGamePicks: %w", err)
	}
	return nil
}

func (r *Impl) UpdateGamePick(ctx context.Context, db bun.IDB, pick *GamePick) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model(pick).
		Column("winner_id", "is_tie").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.UpdateGamePick: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) GetPreference(ctx context.Context, db bun.IDB, userID string) (*Preference, error) {
	pref := new(Preference)
	err := r.resolveDB(db).NewSelect().Model(pref).Where("pp.user_id = ?", userID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("picksdb.GetPreference: %w", err)
	}
	return pref, nil
}

func (r *Impl) UpsertPreference(ctx context.Context, db bun.IDB, pref *Preference) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(pref).
		On("CONFLICT (user_id) DO UPDATE").
		Set("autopick = EXCLUDED.autopick").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.UpsertPreference: %w", err)
	}
	return nil
}

func (r *Impl) UpsertFavorite(ctx context.Context, db bun.IDB, fav *Favorite) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(fav).
		On("CONFLICT (user_id, league_id) DO UPDATE").
		Set("team_id = EXCLUDED.team_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.UpsertFavorite: %w", err)
	}
	return nil
}

func (r *Impl) UpsertGroup(ctx context.Context, db bun.IDB, group *Group) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(group).
		On("CONFLICT (name) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("category = EXCLUDED.category").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.UpsertGroup: %w", err)
	}
	return nil
}

func (r *Impl) AddGroupLeague(ctx context.Context, db bun.IDB, groupID, leagueID int64) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(&GroupLeague{GroupID: groupID, LeagueID: leagueID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.AddGroupLeague: %w", err)
	}
	return nil
}

func (r *Impl) UpsertMembership(ctx context.Context, db bun.IDB, m *Membership) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(m).
		On("CONFLICT (user_id, group_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("picksdb.UpsertMembership: %w", err)
	}
	return nil
}

func (r *Impl) ListParticipants(ctx context.Context, db bun.IDB, leagueID int64) ([]*Participant, error) {
	var out []*Participant
	err := r.resolveDB(db).NewSelect().
		TableExpr("picker_memberships AS pm").
		ColumnExpr("DISTINCT pm.user_id").
		ColumnExpr("coalesce(pp.autopick, 'RAND') AS autopick").
		ColumnExpr("pf.team_id AS favorite_team_id").
		Join("JOIN picker_groups AS pg ON pg.id = pm.group_id").
		Join("JOIN picker_group_leagues AS pgl ON pgl.group_id = pg.id").
		Join("LEFT JOIN picker_preferences AS pp ON pp.user_id = pm.user_id").
		Join("LEFT JOIN picker_favorites AS pf ON pf.user_id = pm.user_id AND pf.league_id = pgl.league_id").
		Where("pgl.league_id = ?", leagueID).
		Where("pm.status = 'ACTV'").
		Where("pg.status = 'ACTV'").
		OrderExpr("pm.user_id ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("picksdb.ListParticipants: %w", err)
	}
	return out, nil
}
