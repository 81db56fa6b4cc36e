package playoffsdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for playoffs, their seeds and brackets.
type Repository interface {
	// GetPlayoff loads a playoff with its seeded teams in seed order.
	GetPlayoff(ctx context.Context, db bun.IDB, id int64) (*Playoff, error)
	GetPlayoffBySeason(ctx context.Context, db bun.IDB, leagueID int64, season int) (*Playoff, error)
	// UpsertPlayoff creates or reschedules the league's playoff for a season.
	UpsertPlayoff(ctx context.Context, db bun.IDB, p *Playoff) error
	ReplaceSeeds(ctx context.Context, db bun.IDB, playoffID int64, teams []*PlayoffTeam) error

	GetAdminPicks(ctx context.Context, db bun.IDB, playoffID int64) (*PlayoffPicks, error)
	UpsertAdminPicks(ctx context.Context, db bun.IDB, picks *PlayoffPicks) error
	UpsertUserPicks(ctx context.Context, db bun.IDB, picks *PlayoffPicks) error
	ListUserPicks(ctx context.Context, db bun.IDB, playoffID int64) ([]*PlayoffPicks, error)
}
