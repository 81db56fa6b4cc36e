package gradingservice

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/picker-bot/app/eventbus"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/Black-And-White-Club/picker-bot/app/shared/operation"
	"github.com/Black-And-White-Club/picker-bot/app/shared/results"
	"github.com/benbjohnson/clock"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// GradingService implements the Service interface.
type GradingService struct {
	leagues  leaguedb.Repository
	picks    picksdb.Repository
	feed     Feed
	notifier Notifier
	logger   *slog.Logger
	metrics  metrics.Recorder
	tracer   trace.Tracer
	db       *bun.DB
	clock    clock.Clock
	settings leaguedomain.SettingsSource
	locks    *gamesetLocks
}

var _ Service = (*GradingService)(nil)

// NewGradingService creates a new GradingService. feed may be nil when
// results only arrive through UpdateResults.
func NewGradingService(
	leagues leaguedb.Repository,
	picks picksdb.Repository,
	feed Feed,
	notifier Notifier,
	logger *slog.Logger,
	metrics metrics.Recorder,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	settings leaguedomain.SettingsSource,
) *GradingService {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &GradingService{
		leagues:  leagues,
		picks:    picks,
		feed:     feed,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		clock:    clk,
		settings: settings,
		locks:    newGamesetLocks(),
	}
}

func (s *GradingService) telemetry() operation.Telemetry {
	return operation.Telemetry{Service: "GradingService", Logger: s.logger, Metrics: s.metrics, Tracer: s.tracer}
}

func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

func fail[S any](err error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](err), nil
}

func (s *GradingService) notify(ctx context.Context, ev eventbus.ResultsGraded) {
	if s.notifier == nil {
		return
	}
	ev.OccurredAt = s.clock.Now().UTC()
	if err := s.notifier.ResultsGraded(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish graded results",
			attr.ExtractCorrelationID(ctx),
			attr.GameSetID(ev.GameSetID),
			attr.Error(err),
		)
	}
}
