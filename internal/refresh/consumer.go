// Package refresh reacts to corpus refresh events from Kafka. Each event
// re-sources the dataset through the configured loader and rebuilds the
// index, so an external publisher can push dictionary updates without
// restarting the service.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AniruddhAgrahari/open-read/internal/dictionary"
	"github.com/AniruddhAgrahari/open-read/internal/loader"
	"github.com/AniruddhAgrahari/open-read/pkg/kafka"
	"github.com/AniruddhAgrahari/open-read/pkg/logger"
	"github.com/AniruddhAgrahari/open-read/pkg/resilience"
)

// Event is the Kafka message payload requesting a corpus refresh.
type Event struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// Consumer wraps a Kafka consumer driving corpus refreshes.
type Consumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates a Consumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *Consumer {
	return &Consumer{
		consumer: kafkaConsumer,
		logger:   logger.WithComponent("refresh-consumer"),
	}
}

// Start begins consuming refresh events. It blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("refresh consumer starting")
	return c.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that reloads the dataset and
// rebuilds the engine's corpus. onRebuilt runs after a successful build
// (cache invalidation, metrics).
func HandleMessage(engine *dictionary.Engine, src loader.Loader, onRebuilt func(ctx context.Context)) kafka.MessageHandler {
	log := logger.WithComponent("refresh-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[Event](value)
		if err != nil {
			log.Error("failed to decode refresh event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		log.Info("processing refresh event",
			"reason", event.Reason,
			"source", src.Name(),
		)

		return resilience.WithTimeout(ctx, 60*time.Second, "corpus-refresh", func(ctx context.Context) error {
			entries, err := src.Load(ctx)
			if err != nil {
				return fmt.Errorf("loading dataset from %s: %w", src.Name(), err)
			}
			report, err := engine.Build(ctx, entries)
			if err != nil {
				return fmt.Errorf("rebuilding corpus: %w", err)
			}
			if onRebuilt != nil {
				onRebuilt(ctx)
			}
			log.Info("corpus refreshed",
				"indexed", report.Indexed,
				"skipped", len(report.Skipped),
			)
			return nil
		})
	}
}
