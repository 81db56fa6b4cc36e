// Package metrics records service operation metrics with Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the metrics surface every picker service depends on.
type Recorder interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordGamesGraded(ctx context.Context, league string, count int)
	RecordAutopicks(ctx context.Context, league string, count int)
}

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	attempts    *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	gamesGraded *prometheus.CounterVec
	autopicks   *prometheus.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder registers the picker collectors on reg.
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Service operations that completed without an infrastructure error.",
		}, []string{"service", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failure_total",
			Help:      "Service operations that returned an error or panicked.",
		}, []string{"service", "operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		gamesGraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_graded_total",
			Help:      "Games whose winner was set from a results payload.",
		}, []string{"league"}),
		autopicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autopicks_total",
			Help:      "Game picks filled by an autopick strategy.",
		}, []string{"league"}),
	}

	for _, c := range []prometheus.Collector{r.attempts, r.successes, r.failures, r.durations, r.gamesGraded, r.autopicks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) RecordOperationAttempt(_ context.Context, operation, service string) {
	r.attempts.WithLabelValues(service, operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationSuccess(_ context.Context, operation, service string) {
	r.successes.WithLabelValues(service, operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationFailure(_ context.Context, operation, service string) {
	r.failures.WithLabelValues(service, operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	r.durations.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordGamesGraded(_ context.Context, league string, count int) {
	r.gamesGraded.WithLabelValues(league).Add(float64(count))
}

func (r *PrometheusRecorder) RecordAutopicks(_ context.Context, league string, count int) {
	r.autopicks.WithLabelValues(league).Add(float64(count))
}

// Noop discards everything.
type Noop struct{}

var _ Recorder = Noop{}

func NewNoop() Noop { return Noop{} }

func (Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (Noop) RecordGamesGraded(context.Context, string, int)                         {}
func (Noop) RecordAutopicks(context.Context, string, int)                           {}
