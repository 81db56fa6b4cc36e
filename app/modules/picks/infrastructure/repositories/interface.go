package picksdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for picksets, game picks, memberships and
// user preferences. A nil db uses the repository's default connection.
type Repository interface {
	// GetPickSet loads a user's pickset for a gameset with its picks.
	GetPickSet(ctx context.Context, db bun.IDB, gamesetID int64, userID string) (*PickSet, error)
	// CreatePickSet inserts ps unless the (user, gameset) pair exists. created
	// is false when another writer got there first; ps is then left unchanged.
	CreatePickSet(ctx context.Context, db bun.IDB, ps *PickSet) (created bool, err error)
	UpdatePickSetPoints(ctx context.Context, db bun.IDB, id int64, points int) error
	ListGameSetPickSets(ctx context.Context, db bun.IDB, gamesetID int64) ([]*PickSet, error)
	// UpdatePickSetStatuses writes correct, wrong and is_winner for every
	// pickset in one statement.
	UpdatePickSetStatuses(ctx context.Context, db bun.IDB, picksets []*PickSet) error
	// ListSeasonPickSets lists a league's picksets with their gameset's
	// sequence and points. A zero season lists every season.
	ListSeasonPickSets(ctx context.Context, db bun.IDB, leagueID int64, season int) ([]*SeasonPickSet, error)

	// InsertGamePicks skips games that already have a pick in the pickset.
	InsertGamePicks(ctx context.Context, db bun.IDB, picks []*GamePick) error
	UpdateGamePick(ctx context.Context, db bun.IDB, pick *GamePick) error

	GetPreference(ctx context.Context, db bun.IDB, userID string) (*Preference, error)
	UpsertPreference(ctx context.Context, db bun.IDB, pref *Preference) error
	UpsertFavorite(ctx context.Context, db bun.IDB, fav *Favorite) error

	UpsertGroup(ctx context.Context, db bun.IDB, group *Group) error
	AddGroupLeague(ctx context.Context, db bun.IDB, groupID, leagueID int64) error
	UpsertMembership(ctx context.Context, db bun.IDB, m *Membership) error
	// ListParticipants returns the active members of active groups playing
	// leagueID, with their autopick preference and favorite team.
	ListParticipants(ctx context.Context, db bun.IDB, leagueID int64) ([]*Participant, error)
}
