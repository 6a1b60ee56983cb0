package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Devensh22345/account-manage/config"
)

// HandlerFunc processes one decoded event. Failures are logged and the
// message is not committed.
type HandlerFunc func(ctx context.Context, event ChannelLogEvent) error

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads channel log events and hands them to a handler.
type Consumer struct {
	reader  MessageReader
	handler HandlerFunc
	logger  zerolog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewConsumer creates a consumer group reader for the channel log topic.
func NewConsumer(cfg *config.KafkaConfig, handler HandlerFunc, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.TopicChannelLogs,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("group_id", cfg.GroupID).
		Str("topic", cfg.TopicChannelLogs).
		Msg("Kafka channel log consumer initialized")

	return newConsumer(reader, handler, logger)
}

func newConsumer(reader MessageReader, handler HandlerFunc, logger zerolog.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  logger.With().Str("component", "kafka_consumer").Logger(),
		done:    make(chan struct{}),
	}
}

// Start starts consuming in a goroutine.
func (c *Consumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Info().Msg("Kafka channel log consumer stopped")
					return
				}
				c.logger.Error().Err(err).Msg("Failed to fetch message from Kafka")
				continue
			}

			if err := c.process(ctx, msg); err != nil {
				c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to handle channel log event")
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("Failed to commit Kafka message")
			}
		}
	}()
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	var event ChannelLogEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Undecodable payloads are skipped so they do not block the partition.
		c.logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("Dropping malformed channel log event")
		return nil
	}
	if err := c.handler(ctx, event); err != nil {
		return fmt.Errorf("chat %d: %w", event.ChatID, err)
	}
	return nil
}

// Stop stops the consumer gracefully
func (c *Consumer) Stop() error {
	if c.cancel == nil {
		return c.reader.Close()
	}
	c.cancel()
	<-c.done

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to close Kafka reader")
		return err
	}
	return nil
}
