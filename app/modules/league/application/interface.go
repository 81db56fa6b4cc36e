package leagueservice

import (
	"context"

	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
)

// Service is the league module's application surface.
type Service interface {
	GetLeague(ctx context.Context, abbr string) (leaguedomain.League, error)
	GetGameSet(ctx context.Context, id int64) (leaguedomain.GameSet, error)
	CurrentGameSet(ctx context.Context, abbr string) (leaguedomain.GameSet, error)
	ImportSeason(ctx context.Context, schedule SeasonSchedule) (ImportSummary, error)
	TeamRecords(ctx context.Context, abbr string, season int) (map[int64]leaguedomain.TeamRecord, error)
}
