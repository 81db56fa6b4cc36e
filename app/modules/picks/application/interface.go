package picksservice

import (
	"context"

	"github.com/Black-And-White-Club/picker-bot/app/eventbus"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	picksdomain "github.com/Black-And-White-Club/picker-bot/app/modules/picks/domain"
)

// Service is the picks module's application surface.
type Service interface {
	GetPickSet(ctx context.Context, gamesetID int64, userID string) (picksdomain.PickSet, error)
	EnsurePicks(ctx context.Context, gamesetID int64, userID string, strategy picksdomain.Strategy, autopick bool) (picksdomain.PickSet, error)
	UpdatePicks(ctx context.Context, gamesetID int64, userID string, winners map[int64]leaguedomain.WinnerRef, points *int) (UpdateResult, error)
	RandomPoints(ctx context.Context, leagueAbbr string) (int, error)
	Kickoff(ctx context.Context, gamesetID int64) (KickoffSummary, error)

	SetFavorite(ctx context.Context, userID, leagueAbbr, teamAbbr string) error
	SetPreference(ctx context.Context, userID string, autopick picksdomain.AutopickPreference) error
	JoinGroup(ctx context.Context, userID, group, leagueAbbr string) error
}

// Notifier receives pick changes once they are committed.
type Notifier interface {
	PicksUpdated(ctx context.Context, ev eventbus.PicksUpdated) error
}

// UpdateResult reports the stored pickset and how many values changed.
type UpdateResult struct {
	PickSet picksdomain.PickSet
	Changed int
	// Skipped lists games whose picks were locked by kickoff.
	Skipped []int64
}

// KickoffSummary counts what a kickoff pass did.
type KickoffSummary struct {
	Participants int
	Created      int
	Completed    int
	Declined     int
	Autopicks    int
}
