package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// EnqueueFunc queues a grading pass for one league.
type EnqueueFunc func(ctx context.Context, league string) error

// Poller enqueues a grading job per configured league on a cron schedule.
type Poller struct {
	cron    *cron.Cron
	leagues []string
	enqueue EnqueueFunc
	logger  *slog.Logger
}

// NewPoller validates spec (standard five-field cron) and registers the poll.
func NewPoller(spec string, leagues []string, enqueue EnqueueFunc, logger *slog.Logger) (*Poller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		cron:    cron.New(),
		enqueue: enqueue,
		logger:  logger,
	}
	for _, l := range leagues {
		if l = strings.ToUpper(strings.TrimSpace(l)); l != "" {
			p.leagues = append(p.leagues, l)
		}
	}
	if _, err := p.cron.AddFunc(spec, func() { p.Poll(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid results poll schedule %q: %w", spec, err)
	}
	return p, nil
}

// Poll enqueues every league once and returns how many were queued.
func (p *Poller) Poll(ctx context.Context) int {
	ctx = attr.WithCorrelationID(ctx, uuid.NewString())
	queued := 0
	for _, league := range p.leagues {
		if err := p.enqueue(ctx, league); err != nil {
			p.logger.ErrorContext(ctx, "Failed to enqueue grade job",
				attr.ExtractCorrelationID(ctx),
				attr.League(league),
				attr.Error(err),
			)
			continue
		}
		queued++
	}
	return queued
}

func (p *Poller) Start() {
	p.logger.Info("Starting results poller", attr.Any("leagues", p.leagues))
	p.cron.Start()
}

// Stop halts the schedule and waits for a running poll, or for ctx.
func (p *Poller) Stop(ctx context.Context) error {
	done := p.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
