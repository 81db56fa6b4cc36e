package playoffsdb

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

func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) selectPlayoff(db bun.IDB, p *Playoff) *bun.SelectQuery {
	return r.resolveDB(db).NewSelect().
		Model(p).
		Relation("Teams", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("pt.seed ASC", "pt.id ASC")
		}).
		Relation("Teams.Team")
}

func (r *Impl) GetPlayoff(ctx context.Context, db bun.IDB, id int64) (*Playoff, error) {
	p := new(Playoff)
	if err := r.selectPlayoff(db, p).Where("po.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("playoffsdb.GetPlayoff: %w", err)
	}
	return p, nil
}

func (r *Impl) GetPlayoffBySeason(ctx context.Context, db bun.IDB, leagueID int64, season int) (*Playoff, error) {
	p := new(Playoff)
	err := r.selectPlayoff(db, p).
		Where("po.league_id = ?", leagueID).
		Where("po.season = ?", season).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("playoffsdb.GetPlayoffBySeason: %w", err)
	}
	return p, nil
}

func (r *Impl) UpsertPlayoff(ctx context.Context, db bun.IDB, p *Playoff) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(p).
		On("CONFLICT (league_id, season) DO UPDATE").
		Set("kickoff = EXCLUDED.kickoff").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("playoffsdb.UpsertPlayoff: %w", err)
	}
	return nil
}

func (r *Impl) ReplaceSeeds(ctx context.Context, db bun.IDB, playoffID int64, teams []*PlayoffTeam) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*PlayoffTeam)(nil)).Where("playoff_id = ?", playoffID).Exec(ctx); err != nil {
		return fmt.Errorf("playoffsdb.ReplaceSeeds: %w", err)
	}
	if len(teams) == 0 {
		return nil
	}
	for _, t := range teams {
		t.PlayoffID = playoffID
	}
	if _, err := db.NewInsert().Model(&teams).Exec(ctx); err != nil {
		return fmt.Errorf("playoffsdb.ReplaceSeeds: %w", err)
	}
	return nil
}

func (r *Impl) GetAdminPicks(ctx context.Context, db bun.IDB, playoffID int64) (*PlayoffPicks, error) {
	picks := new(PlayoffPicks)
	err := r.resolveDB(db).NewSelect().
		Model(picks).
		Where("ppk.playoff_id = ?", playoffID).
		Where("ppk.user_id IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("playoffsdb.GetAdminPicks: %w", err)
	}
	return picks, nil
}

// UpsertAdminPicks relies on the partial unique index over admin rows.
func (r *Impl) UpsertAdminPicks(ctx context.Context, db bun.IDB, picks *PlayoffPicks) error {
	picks.UserID = nil
	_, err := r.resolveDB(db).NewInsert().
		Model(picks).
		On("CONFLICT (playoff_id) WHERE user_id IS NULL DO UPDATE").
		Set("picks = EXCLUDED.picks").
		Set("updated_at = current_timestamp").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("playoffsdb.UpsertAdminPicks: %w", err)
	}
	return nil
}

func (r *Impl) UpsertUserPicks(ctx context.Context, db bun.IDB, picks *PlayoffPicks) error {
	if picks.UserID == nil {
		return fmt.Errorf("playoffsdb.UpsertUserPicks: missing user")
	}
	_, err := r.resolveDB(db).NewInsert().
		Model(picks).
		On("CONFLICT (playoff_id, user_id) DO UPDATE").
		Set("picks = EXCLUDED.picks").
		Set("updated_at = current_timestamp").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("playoffsdb.UpsertUserPicks: %w", err)
	}
	return nil
}

func (r *Impl) ListUserPicks(ctx context.Context, db bun.IDB, playoffID int64) ([]*PlayoffPicks, error) {
	var picks []*PlayoffPicks
	err := r.resolveDB(db).NewSelect().
		Model(&picks).
		Where("ppk.playoff_id = ?", playoffID).
		Where("ppk.user_id IS NOT NULL").
		Order("ppk.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("playoffsdb.ListUserPicks: %w", err)
	}
	return picks, nil
}
