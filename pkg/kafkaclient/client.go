package kafkaclient

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Reader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer manages the Kafka consumer and its message loop.
// It is designed to be thread-safe.
type Consumer struct {
	log    zerolog.Logger
	reader Reader
	// a channel to signal a graceful shutdown.
	doneChan chan struct{}
	// a wait group to ensure all goroutines have exited before the program terminates.
	wg sync.WaitGroup
	// a channel to hold the Kafka messages, consumed downstream via Messages().
	messageChan chan kafka.Message
}

// NewConsumer creates a new instance of Consumer reading from the given topic.
func NewConsumer(log zerolog.Logger, topic, groupID, broker string) (*Consumer, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Disable auto-commit to manually control offset committing.
		CommitInterval: 0,
		// Read messages in batches of at least 10KB.
		MinBytes: 10e3,
		// Read messages in batches of at most 10MB.
		MaxBytes: 10e6,
	})
	return &Consumer{
		log:         log,
		reader:      reader,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
	}, nil
}

// Messages returns the channel the consumption loop publishes to. The channel
// is closed when the loop stops.
func (c *Consumer) Messages() <-chan kafka.Message {
	return c.messageChan
}

// CommitOffset acknowledges a message after it has been processed.
func (c *Consumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	c.log.Debug().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("committing offset")
	return c.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the Kafka message consumption loop in a separate goroutine.
func (c *Consumer) StartConsuming(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.messageChan)

		c.log.Info().Msg("Starting Kafka consumer loop...")

		for {
			select {
			// Check for context cancellation or done signal.
			case <-ctx.Done():
				c.log.Info().Msg("Context canceled, stopping consumer loop.")
				return
			case <-c.doneChan:
				c.log.Info().Msg("Shutdown signal received, stopping consumer loop.")
				return
			default:
				// Read a single message.
				msg, err := c.reader.ReadMessage(ctx)
				if err != nil {
					// A closed reader reports EOF; everything else gets a
					// backoff to prevent a tight error loop.
					if errors.Is(err, io.EOF) {
						c.log.Info().Msg("Reader closed, stopping consumer loop.")
						return
					}
					if errors.Is(err, context.Canceled) {
						return
					}
					c.log.Error().Err(err).Msg("Error reading message")
					time.Sleep(1 * time.Second)
					continue
				}

				// Send the message to the message channel for external consumption.
				select {
				case c.messageChan <- msg:
					c.log.Debug().
						Str("topic", msg.Topic).
						Int("partition", msg.Partition).
						Int64("offset", msg.Offset).
						Msg("message received")
				case <-ctx.Done():
					c.log.Info().Msg("Context canceled, stopping consumer before sending message.")
					return
				case <-c.doneChan:
					c.log.Info().Msg("Shutdown signal received, stopping consumer before sending message.")
					return
				}
			}
		}
	}()
}

// Stop gracefully shuts down the Kafka consumer.
func (c *Consumer) Stop() {
	c.log.Info().Msg("Attempting to stop Kafka consumer...")
	close(c.doneChan)
	if err := c.reader.Close(); err != nil {
		c.log.Error().Err(err).Msg("Failed to close Kafka reader")
	}
	c.wg.Wait()
	c.log.Info().Msg("Kafka consumer stopped gracefully.")
}
