package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamName holds every picker.* subject.
const StreamName = "picker"

var streamSubjects = []string{TopicPicksUpdated, TopicResultsGraded}

// EnsureStream creates the picker stream, or adds any subject it is missing.
func EnsureStream(ctx context.Context, conn *nc.Conn, logger *slog.Logger) error {
	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	stream, err := js.Stream(ctx, StreamName)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err := js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     StreamName,
			Subjects: streamSubjects,
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", StreamName, err)
		}
		logger.Info("Created JetStream stream", slog.String("stream", StreamName))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream %s: %w", StreamName, err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}
	missing := false
	for _, subject := range streamSubjects {
		if !slices.Contains(info.Config.Subjects, subject) {
			info.Config.Subjects = append(info.Config.Subjects, subject)
			missing = true
		}
	}
	if !missing {
		return nil
	}
	if _, err := js.UpdateStream(ctx, info.Config); err != nil {
		return fmt.Errorf("failed to update stream with new subjects: %w", err)
	}
	logger.Info("Stream updated with new subjects", slog.String("stream", StreamName))
	return nil
}
