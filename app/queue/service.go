package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/Black-And-White-Club/picker-bot/config"
	"github.com/benbjohnson/clock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// QueueName is the dedicated River queue for picker jobs.
const QueueName = "picker"

// QueueService schedules kickoff and grading jobs.
type QueueService interface {
	// ScheduleKickoff runs a kickoff pass for the gameset at opens.
	ScheduleKickoff(ctx context.Context, gamesetID int64, opens time.Time) error
	// EnqueueGrade queues a grading pass for the league now.
	EnqueueGrade(ctx context.Context, league string) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service handles job scheduling for the picker using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	poller  *Poller
	logger  *slog.Logger
	metrics metrics.Recorder
	clock   clock.Clock
	// gradeWindow dedupes grade jobs queued for the same league.
	gradeWindow time.Duration
}

// NewService creates the River client and the results poller.
func NewService(
	ctx context.Context,
	logger *slog.Logger,
	dsn string,
	m metrics.Recorder,
	clk clock.Clock,
	picks Kickoffer,
	grading Grader,
	cfg config.SchedulerConfig,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_picker_queue_service"),
		attr.String("component", "river_queue"),
	)
	if clk == nil {
		clk = clock.New()
	}

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing picker queue service")

	// River requires pgx, not database/sql.
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewKickoffWorker(picks, ctxLogger, m))
	river.AddWorker(workers, NewGradeWorker(grading, ctxLogger, m))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
			QueueName:          {MaxWorkers: cfg.MaxWorkers},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	s := &Service{
		client:      riverClient,
		pool:        pool,
		logger:      ctxLogger,
		metrics:     m,
		clock:       clk,
		gradeWindow: time.Minute,
	}

	if len(cfg.Leagues) > 0 {
		s.poller, err = NewPoller(cfg.ResultsPoll, cfg.Leagues, s.EnqueueGrade, ctxLogger)
		if err != nil {
			pool.Close()
			m.RecordOperationFailure(ctx, "initialize_service", "river")
			return nil, err
		}
	}

	m.RecordOperationSuccess(ctx, "initialize_service", "river")
	m.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Picker queue service initialized successfully")
	return s, nil
}

// Start starts the River client and the results poller.
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting picker queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	if s.poller != nil {
		s.poller.Start()
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", time.Since(start))
	return nil
}

// Stop stops the poller, then the River client.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping picker queue service")

	if s.poller != nil {
		if err := s.poller.Stop(ctx); err != nil {
			s.logger.Warn("Results poller did not stop cleanly", attr.Error(err))
		}
	}
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", time.Since(start))
	return nil
}

// Close releases the pgx pool.
func (s *Service) Close() {
	s.pool.Close()
}

// ScheduleKickoff inserts one kickoff job per gameset. An opens in the past
// runs the job immediately.
func (s *Service) ScheduleKickoff(ctx context.Context, gamesetID int64, opens time.Time) error {
	s.metrics.RecordOperationAttempt(ctx, "schedule_kickoff", "river")

	ctxLogger := s.logger.With(
		attr.GameSetID(gamesetID),
		attr.Time("opens", opens),
		attr.String("operation", "schedule_kickoff"),
	)

	opts := kickoffInsertOpts(opens, s.clock.Now())
	res, err := s.client.Insert(ctx, KickoffJob{GameSetID: gamesetID}, opts)
	if err != nil {
		ctxLogger.Error("Failed to schedule kickoff job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_kickoff", "river")
		return fmt.Errorf("failed to schedule kickoff job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_kickoff", "river")
	if res.UniqueSkippedAsDuplicate {
		ctxLogger.Debug("Kickoff job already scheduled", attr.Int64("job_id", res.Job.ID))
		return nil
	}
	ctxLogger.Info("Kickoff job scheduled", attr.Int64("job_id", res.Job.ID))
	return nil
}

// EnqueueGrade inserts a grade job, deduplicated per league within a short window.
func (s *Service) EnqueueGrade(ctx context.Context, league string) error {
	s.metrics.RecordOperationAttempt(ctx, "enqueue_grade", "river")

	res, err := s.client.Insert(ctx, GradeJob{League: league}, gradeInsertOpts(s.gradeWindow))
	if err != nil {
		s.logger.Error("Failed to enqueue grade job", attr.League(league), attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_grade", "river")
		return fmt.Errorf("failed to enqueue grade job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_grade", "river")
	s.logger.Debug("Grade job enqueued",
		attr.League(league),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

func kickoffInsertOpts(opens, now time.Time) *river.InsertOpts {
	opts := &river.InsertOpts{
		Queue: QueueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
	if opens.After(now) {
		opts.ScheduledAt = opens
	}
	return opts
}

func gradeInsertOpts(window time.Duration) *river.InsertOpts {
	return &river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 3,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: window,
		},
	}
}
