package playoffsservice

import (
	"context"
	"time"

	playoffsdomain "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/domain"
)

// Service is the playoffs module's application surface. Bracket payloads
// use the flat "game_1".."game_11" plus "points" form.
type Service interface {
	CreatePlayoff(ctx context.Context, leagueAbbr string, season int, kickoff time.Time, seeds []SeedInput) (playoffsdomain.Playoff, error)
	GetPlayoff(ctx context.Context, leagueAbbr string, season int) (playoffsdomain.Playoff, error)
	SavePicks(ctx context.Context, playoffID int64, userID string, payload map[string]string) (saved bool, err error)
	SaveAdminPicks(ctx context.Context, playoffID int64, payload map[string]string) error
	Scores(ctx context.Context, playoffID int64) ([]playoffsdomain.Result, error)
}

// SeedInput places a team, by abbreviation, at a seed.
type SeedInput struct {
	Seed int
	Team string
}
