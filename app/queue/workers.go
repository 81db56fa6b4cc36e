package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gradingservice "github.com/Black-And-White-Club/picker-bot/app/modules/grading/application"
	gradingdomain "github.com/Black-And-White-Club/picker-bot/app/modules/grading/domain"
	picksservice "github.com/Black-And-White-Club/picker-bot/app/modules/picks/application"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Kickoffer runs a kickoff pass for one gameset.
type Kickoffer interface {
	Kickoff(ctx context.Context, gamesetID int64) (picksservice.KickoffSummary, error)
}

// Grader grades a league's current gameset from the results feed.
type Grader interface {
	GradeLeague(ctx context.Context, leagueAbbr string) (gradingservice.Summary, error)
}

// KickoffWorker runs KickoffJob.
type KickoffWorker struct {
	river.WorkerDefaults[KickoffJob]
	picks   Kickoffer
	logger  *slog.Logger
	metrics metrics.Recorder
}

func NewKickoffWorker(picks Kickoffer, logger *slog.Logger, m metrics.Recorder) *KickoffWorker {
	return &KickoffWorker{picks: picks, logger: logger, metrics: m}
}

func (w *KickoffWorker) Work(ctx context.Context, job *river.Job[KickoffJob]) error {
	ctx = attr.WithCorrelationID(ctx, uuid.NewString())
	id := job.Args.GameSetID
	start := time.Now()
	w.metrics.RecordOperationAttempt(ctx, "kickoff_job", "river")

	summary, err := w.picks.Kickoff(ctx, id)
	if errors.Is(err, picksservice.ErrGameSetNotFound) {
		w.logger.WarnContext(ctx, "Kickoff job for unknown gameset, cancelling",
			attr.ExtractCorrelationID(ctx),
			attr.GameSetID(id),
		)
		w.metrics.RecordOperationFailure(ctx, "kickoff_job", "river")
		return river.JobCancel(err)
	}
	if err != nil {
		w.logger.ErrorContext(ctx, "Kickoff job failed",
			attr.ExtractCorrelationID(ctx),
			attr.GameSetID(id),
			attr.Error(err),
		)
		w.metrics.RecordOperationFailure(ctx, "kickoff_job", "river")
		return err
	}

	w.metrics.RecordOperationSuccess(ctx, "kickoff_job", "river")
	w.metrics.RecordOperationDuration(ctx, "kickoff_job", "river", time.Since(start))
	w.logger.InfoContext(ctx, "Kickoff job completed",
		attr.ExtractCorrelationID(ctx),
		attr.GameSetID(id),
		attr.Int("participants", summary.Participants),
		attr.Int("autopicks", summary.Autopicks),
	)
	return nil
}

// GradeWorker runs GradeJob.
type GradeWorker struct {
	river.WorkerDefaults[GradeJob]
	grading Grader
	logger  *slog.Logger
	metrics metrics.Recorder
}

func NewGradeWorker(grading Grader, logger *slog.Logger, m metrics.Recorder) *GradeWorker {
	return &GradeWorker{grading: grading, logger: logger, metrics: m}
}

// Timeout bounds one feed round trip plus the regrade.
func (w *GradeWorker) Timeout(*river.Job[GradeJob]) time.Duration { return 2 * time.Minute }

func (w *GradeWorker) Work(ctx context.Context, job *river.Job[GradeJob]) error {
	ctx = attr.WithCorrelationID(ctx, uuid.NewString())
	league := job.Args.League
	start := time.Now()
	w.metrics.RecordOperationAttempt(ctx, "grade_job", "river")

	summary, err := w.grading.GradeLeague(ctx, league)
	switch {
	case errors.Is(err, gradingservice.ErrLeagueNotFound):
		w.logger.WarnContext(ctx, "Grade job for unknown league, cancelling",
			attr.ExtractCorrelationID(ctx),
			attr.League(league),
		)
		w.metrics.RecordOperationFailure(ctx, "grade_job", "river")
		return river.JobCancel(err)
	case errors.Is(err, gradingservice.ErrNoGameSet), errors.Is(err, gradingdomain.ErrResultsMismatch):
		// The next poll tries again.
		w.logger.InfoContext(ctx, "Nothing to grade",
			attr.ExtractCorrelationID(ctx),
			attr.League(league),
			attr.String("reason", err.Error()),
		)
		w.metrics.RecordOperationSuccess(ctx, "grade_job", "river")
		return nil
	case err != nil:
		w.logger.ErrorContext(ctx, "Grade job failed",
			attr.ExtractCorrelationID(ctx),
			attr.League(league),
			attr.Error(err),
		)
		w.metrics.RecordOperationFailure(ctx, "grade_job", "river")
		return err
	}

	w.metrics.RecordOperationSuccess(ctx, "grade_job", "river")
	w.metrics.RecordOperationDuration(ctx, "grade_job", "river", time.Since(start))
	w.logger.InfoContext(ctx, "Grade job completed",
		attr.ExtractCorrelationID(ctx),
		attr.League(league),
		attr.GameSetID(summary.GameSetID),
		attr.Int("updated", summary.Updated),
		attr.Int("points", summary.Points),
	)
	return nil
}
