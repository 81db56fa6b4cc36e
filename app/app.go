package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Black-And-White-Club/picker-bot/app/eventbus"
	gradingservice "github.com/Black-And-White-Club/picker-bot/app/modules/grading/application"
	"github.com/Black-And-White-Club/picker-bot/app/modules/grading/infrastructure/feed"
	leagueservice "github.com/Black-And-White-Club/picker-bot/app/modules/league/application"
	leaguedomain "github.com/Black-And-White-Club/picker-bot/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/picker-bot/app/modules/league/infrastructure/repositories"
	picksservice "github.com/Black-And-White-Club/picker-bot/app/modules/picks/application"
	picksdb "github.com/Black-And-White-Club/picker-bot/app/modules/picks/infrastructure/repositories"
	playoffsservice "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/application"
	playoffsdb "github.com/Black-And-White-Club/picker-bot/app/modules/playoffs/infrastructure/repositories"
	standingsservice "github.com/Black-And-White-Club/picker-bot/app/modules/standings/application"
	"github.com/Black-And-White-Club/picker-bot/app/queue"
	"github.com/Black-And-White-Club/picker-bot/app/server"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/Black-And-White-Club/picker-bot/config"
	"github.com/Black-And-White-Club/picker-bot/internal/db/bundb"
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

// App holds the picker's services and the infrastructure they share.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Clock    clock.Clock
	DB       *bun.DB
	Registry *prometheus.Registry
	Metrics  metrics.Recorder

	LeagueService    leagueservice.Service
	PicksService     picksservice.Service
	GradingService   gradingservice.Service
	StandingsService standingsservice.Service
	PlayoffsService  playoffsservice.Service

	leagueRepo leaguedb.Repository
	notifier   *eventbus.Notifier
	queue      *queue.Service
}

// NewLogger returns the JSON slog logger at the configured level.
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})).
		With(attr.String("service", "picker-bot"), attr.String("environment", cfg.Observability.Environment))
}

// NewApp connects to Postgres (and NATS when configured) and builds every service.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg)

	clk, err := cfg.NewClock()
	if err != nil {
		return nil, err
	}
	if cfg.FakeDatetimeNow != "" {
		logger.Warn("Clock pinned", attr.Time("now", clk.Now()))
	}

	settings := leaguedomain.NewSettingsSource(cfg.Picker)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheusRecorder(registry, "picker")
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	db, err := bundb.Open(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Clock:    clk,
		DB:       db,
		Registry: registry,
		Metrics:  recorder,
	}

	var (
		picksNotifier   picksservice.Notifier
		gradingNotifier gradingservice.Notifier
	)
	if cfg.NATS.URL != "" {
		publisher, err := eventbus.NewNATSPublisher(ctx, cfg.NATS.URL, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.notifier = eventbus.NewNotifier(publisher, logger)
		picksNotifier, gradingNotifier = a.notifier, a.notifier
	} else {
		logger.Warn("NATS not configured, events are disabled")
	}

	tracer := otel.Tracer("picker-bot")
	leagueRepo := leaguedb.NewRepository(db)
	picksRepo := picksdb.NewRepository(db)
	playoffsRepo := playoffsdb.NewRepository(db)
	results := feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.RequestsPerSec, cfg.Feed.Timeout, logger)

	a.leagueRepo = leagueRepo
	a.LeagueService = leagueservice.NewLeagueService(leagueRepo, logger, recorder, tracer, db, clk, settings)
	a.PicksService = picksservice.NewPicksService(picksRepo, leagueRepo, picksNotifier, logger, recorder, tracer, db, clk, settings, nil)
	a.GradingService = gradingservice.NewGradingService(leagueRepo, picksRepo, results, gradingNotifier, logger, recorder, tracer, db, clk, settings)
	a.StandingsService = standingsservice.NewStandingsService(picksRepo, leagueRepo, logger, recorder, tracer, db, settings)
	a.PlayoffsService = playoffsservice.NewPlayoffsService(playoffsRepo, leagueRepo, logger, recorder, tracer, db, clk, settings)

	return a, nil
}

// Queue lazily creates the River client. Callers that only insert jobs
// never start it.
func (a *App) Queue(ctx context.Context) (*queue.Service, error) {
	if a.queue != nil {
		return a.queue, nil
	}
	q, err := queue.NewService(ctx, a.Logger, a.Config.Postgres.DSN, a.Metrics, a.Clock, a.PicksService, a.GradingService, a.Config.Scheduler)
	if err != nil {
		return nil, err
	}
	a.queue = q
	return q, nil
}

// Serve runs the job queue, the results poller and the ops server until ctx
// is cancelled.
func (a *App) Serve(ctx context.Context) error {
	q, err := a.Queue(ctx)
	if err != nil {
		return err
	}
	if err := q.Start(ctx); err != nil {
		return err
	}

	for _, abbr := range a.Config.Scheduler.Leagues {
		if err := a.ScheduleKickoffs(ctx, abbr); err != nil {
			a.Logger.Error("Failed to schedule kickoffs", attr.League(abbr), attr.Error(err))
		}
	}

	router := server.NewRouter(a.Registry, map[string]server.HealthFunc{
		"postgres": a.DB.PingContext,
	})
	srvErr := server.New(a.Config.Observability.MetricsAddress, router, a.Logger).Run(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return errors.Join(srvErr, q.Stop(stopCtx))
}

// ScheduleKickoffs queues a kickoff job for every gameset of the league's
// current season that has not closed yet.
func (a *App) ScheduleKickoffs(ctx context.Context, abbr string) error {
	league, err := a.leagueRepo.GetLeagueByAbbr(ctx, nil, abbr)
	if err != nil {
		return fmt.Errorf("league %s: %w", abbr, err)
	}
	sets, err := a.leagueRepo.ListGameSets(ctx, nil, league.ID, league.CurrentSeason)
	if err != nil {
		return err
	}
	q, err := a.Queue(ctx)
	if err != nil {
		return err
	}

	now := a.Clock.Now()
	for _, gs := range sets {
		if !gs.Closes.After(now) {
			continue
		}
		if err := q.ScheduleKickoff(ctx, gs.ID, gs.Opens); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the queue pool, the publisher and the database.
func (a *App) Close() error {
	var errs []error
	if a.queue != nil {
		a.queue.Close()
	}
	if a.notifier != nil {
		errs = append(errs, a.notifier.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
