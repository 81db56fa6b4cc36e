package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPrometheusRecorder(reg, "picker")
	require.NoError(t, err)

	ctx := context.Background()
	r.RecordOperationAttempt(ctx, "UpdateResults", "GradingService")
	r.RecordOperationAttempt(ctx, "UpdateResults", "GradingService")
	r.RecordOperationSuccess(ctx, "UpdateResults", "GradingService")
	r.RecordOperationFailure(ctx, "UpdateResults", "GradingService")
	r.RecordOperationDuration(ctx, "UpdateResults", "GradingService", 20*time.Millisecond)
	r.RecordGamesGraded(ctx, "nfl", 3)
	r.RecordAutopicks(ctx, "nfl", 16)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.attempts.WithLabelValues("GradingService", "UpdateResults")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.successes.WithLabelValues("GradingService", "UpdateResults")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("GradingService", "UpdateResults")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.gamesGraded.WithLabelValues("nfl")))
	assert.Equal(t, 16.0, testutil.ToFloat64(r.autopicks.WithLabelValues("nfl")))

	_, err = NewPrometheusRecorder(reg, "picker")
	assert.Error(t, err, "registering twice on one registry should fail")
}
