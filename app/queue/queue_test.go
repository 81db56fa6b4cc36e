package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	gradingservice "github.com/Black-And-White-Club/picker-bot/app/modules/grading/application"
	gradingdomain "github.com/Black-And-White-Club/picker-bot/app/modules/grading/domain"
	picksservice "github.com/Black-And-White-Club/picker-bot/app/modules/picks/application"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/app/shared/metrics"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKickoffer struct {
	KickoffFunc func(ctx context.Context, gamesetID int64) (picksservice.KickoffSummary, error)
	trace       []string
}

func (f *fakeKickoffer) Kickoff(ctx context.Context, gamesetID int64) (picksservice.KickoffSummary, error) {
	f.trace = append(f.trace, fmt.Sprintf("Kickoff:%d", gamesetID))
	return f.KickoffFunc(ctx, gamesetID)
}

type fakeGrader struct {
	GradeLeagueFunc func(ctx context.Context, league string) (gradingservice.Summary, error)
	trace           []string
}

func (f *fakeGrader) GradeLeague(ctx context.Context, league string) (gradingservice.Summary, error) {
	f.trace = append(f.trace, "GradeLeague:"+league)
	return f.GradeLeagueFunc(ctx, league)
}

func TestKickoffWorker(t *testing.T) {
	infra := errors.New("connection reset")
	tests := []struct {
		name       string
		err        error
		wantErr    error
		wantCancel bool
	}{
		{name: "completed"},
		{name: "unknown gameset is cancelled", err: picksservice.ErrGameSetNotFound, wantErr: picksservice.ErrGameSetNotFound, wantCancel: true},
		{name: "infrastructure error is retried", err: infra, wantErr: infra},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picks := &fakeKickoffer{KickoffFunc: func(ctx context.Context, id int64) (picksservice.KickoffSummary, error) {
				assert.NotEmpty(t, attr.CorrelationID(ctx))
				return picksservice.KickoffSummary{Participants: 3}, tt.err
			}}
			w := NewKickoffWorker(picks, slog.New(slog.DiscardHandler), metrics.NewNoop())

			err := w.Work(context.Background(), &river.Job[KickoffJob]{Args: KickoffJob{GameSetID: 42}})

			assert.Equal(t, []string{"Kickoff:42"}, picks.trace)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantCancel {
				assert.Equal(t, river.JobCancel(tt.err).Error(), err.Error())
			}
		})
	}
}

func TestGradeWorker(t *testing.T) {
	infra := errors.New("feed timeout")
	tests := []struct {
		name       string
		err        error
		wantErr    error
		wantCancel bool
	}{
		{name: "graded"},
		{name: "nothing current", err: fmt.Errorf("%w: NFL", gradingservice.ErrNoGameSet)},
		{name: "stale feed", err: gradingdomain.ErrResultsMismatch},
		{name: "unknown league is cancelled", err: gradingservice.ErrLeagueNotFound, wantErr: gradingservice.ErrLeagueNotFound, wantCancel: true},
		{name: "feed error is retried", err: infra, wantErr: infra},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grading := &fakeGrader{GradeLeagueFunc: func(ctx context.Context, league string) (gradingservice.Summary, error) {
				return gradingservice.Summary{GameSetID: 7, Updated: 2}, tt.err
			}}
			w := NewGradeWorker(grading, slog.New(slog.DiscardHandler), metrics.NewNoop())

			err := w.Work(context.Background(), &river.Job[GradeJob]{Args: GradeJob{League: "NFL"}})

			assert.Equal(t, []string{"GradeLeague:NFL"}, grading.trace)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantCancel {
				assert.Equal(t, river.JobCancel(tt.err).Error(), err.Error())
			}
		})
	}
}

func TestPoller(t *testing.T) {
	t.Run("invalid schedule", func(t *testing.T) {
		_, err := NewPoller("every tuesday", []string{"NFL"}, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "every tuesday")
	})

	t.Run("enqueues each league and keeps going on error", func(t *testing.T) {
		var got []string
		enqueue := func(ctx context.Context, league string) error {
			got = append(got, league)
			if league == "NBA" {
				return errors.New("queue full")
			}
			return nil
		}
		p, err := NewPoller("*/15 * * * *", []string{" nfl", "", "NBA", "mlb "}, enqueue, slog.New(slog.DiscardHandler))
		require.NoError(t, err)

		queued := p.Poll(context.Background())

		assert.Equal(t, []string{"NFL", "NBA", "MLB"}, got)
		assert.Equal(t, 2, queued)
	})

	t.Run("stop without start", func(t *testing.T) {
		p, err := NewPoller("@hourly", nil, func(context.Context, string) error { return nil }, nil)
		require.NoError(t, err)
		assert.NoError(t, p.Stop(context.Background()))
	})
}

func TestInsertOpts(t *testing.T) {
	now := time.Date(2024, 9, 8, 12, 0, 0, 0, time.UTC)

	future := kickoffInsertOpts(now.Add(time.Hour), now)
	assert.Equal(t, QueueName, future.Queue)
	assert.Equal(t, now.Add(time.Hour), future.ScheduledAt)
	assert.True(t, future.UniqueOpts.ByArgs)

	past := kickoffInsertOpts(now.Add(-time.Hour), now)
	assert.True(t, past.ScheduledAt.IsZero())

	grade := gradeInsertOpts(time.Minute)
	assert.Equal(t, QueueName, grade.Queue)
	assert.True(t, grade.UniqueOpts.ByArgs)
	assert.Equal(t, time.Minute, grade.UniqueOpts.ByPeriod)
}
