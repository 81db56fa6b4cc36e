package leaguedb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for league, team, gameset and game persistence.
// All methods accept a bun.IDB so they run inside the caller's transaction;
// a nil db falls back to the repository's default connection.
type Repository interface {
	GetLeague(ctx context.Context, db bun.IDB, id int64) (*League, error)
	GetLeagueByAbbr(ctx context.Context, db bun.IDB, abbr string) (*League, error)
	UpsertLeague(ctx context.Context, db bun.IDB, league *League) error

	ListTeams(ctx context.Context, db bun.IDB, leagueID int64) ([]*Team, error)
	UpsertTeam(ctx context.Context, db bun.IDB, team *Team) error
	UpsertConference(ctx context.Context, db bun.IDB, conf *Conference) error
	UpsertDivision(ctx context.Context, db bun.IDB, div *Division) error

	GetGameSet(ctx context.Context, db bun.IDB, id int64) (*GameSet, error)
	// LockGameSet takes a row lock on the gameset for the rest of the transaction.
	LockGameSet(ctx context.Context, db bun.IDB, id int64) error
	ListGameSets(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*GameSet, error)
	UpsertGameSet(ctx context.Context, db bun.IDB, gs *GameSet) error
	SetGameSetPoints(ctx context.Context, db bun.IDB, id int64, points int) error
	ReplaceByes(ctx context.Context, db bun.IDB, gamesetID int64, teamIDs []int64) error

	UpsertGame(ctx context.Context, db bun.IDB, game *Game) error
	UpdateGameResult(ctx context.Context, db bun.IDB, game *Game) error
	ListSeasonGames(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*Game, error)

	// PointsStats aggregates gamesets with nonzero points.
	PointsStats(ctx context.Context, db bun.IDB, leagueID int64) (PointsStats, error)
}
