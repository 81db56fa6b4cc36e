package gradingservice

import (
	"context"

	"github.com/Black-And-White-Club/picker-bot/app/eventbus"
	gradingdomain "github.com/Black-And-White-Club/picker-bot/app/modules/grading/domain"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
)

// Service is the grading module's application surface.
type Service interface {
	UpdateResults(ctx context.Context, gamesetID int64, res *gradingdomain.Results) (Summary, error)
	GradeLeague(ctx context.Context, leagueAbbr string) (Summary, error)
}

// Feed fetches provider results. Nil results mean nothing is published yet.
type Feed interface {
	Fetch(ctx context.Context, league leaguedomain.League, gs leaguedomain.GameSet) (*gradingdomain.Results, error)
}

// Notifier receives grading passes once they are committed.
type Notifier interface {
	ResultsGraded(ctx context.Context, ev eventbus.ResultsGraded) error
}

// Summary reports what a grading pass changed.
type Summary struct {
	GameSetID int64
	Updated   int
	Points    int
	// Winners is set when picksets were regraded.
	Winners []string
}
