package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	nc "github.com/nats-io/nats.go"
)

// Notifier publishes picker events over a watermill publisher.
type Notifier struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewNotifier wraps publisher. Tests pass a gochannel publisher.
func NewNotifier(publisher message.Publisher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{publisher: publisher, logger: logger}
}

// NewNATSPublisher connects a JetStream-backed publisher and makes sure the
// picker stream exists.
func NewNATSPublisher(ctx context.Context, natsURL string, logger *slog.Logger) (message.Publisher, error) {
	natsConn, err := nc.Connect(natsURL, nc.RetryOnFailedConnect(true), nc.Timeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer natsConn.Close()

	if err := EnsureStream(ctx, natsConn, logger); err != nil {
		return nil, err
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL: natsURL,
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
				nc.Timeout(30 * time.Second),
				nc.ReconnectWait(1 * time.Second),
			},
			Marshaler: &nats.NATSMarshaler{},
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
			},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	return publisher, nil
}

func (n *Notifier) PicksUpdated(ctx context.Context, ev PicksUpdated) error {
	return n.publish(ctx, TopicPicksUpdated, ev)
}

func (n *Notifier) ResultsGraded(ctx context.Context, ev ResultsGraded) error {
	return n.publish(ctx, TopicResultsGraded, ev)
}

func (n *Notifier) publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("eventbus: marshal %s: %w", topic, err)
	}
	msg := message.NewMessage(uuid.NewString(), body)
	msg.Metadata.Set("correlation_id", attr.CorrelationID(ctx))
	msg.Metadata.Set("topic", topic)
	msg.SetContext(ctx)

	if err := n.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("eventbus: publish %s: %w", topic, err)
	}
	n.logger.DebugContext(ctx, "Event published",
		attr.ExtractCorrelationID(ctx),
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
	)
	return nil
}

// Close closes the underlying publisher.
func (n *Notifier) Close() error {
	return n.publisher.Close()
}
