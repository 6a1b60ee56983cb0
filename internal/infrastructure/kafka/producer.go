package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/config"
)

// ProducerMetrics is the subset of metrics the producer reports.
type ProducerMetrics interface {
	RecordKafkaMessage()
	RecordKafkaError(errorType string)
}

// Producer publishes channel log events.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	metrics  ProducerMetrics
	logger   zerolog.Logger
}

// NewProducer creates a sync producer for the channel log topic.
func NewProducer(cfg *config.KafkaConfig, metrics ProducerMetrics, logger zerolog.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Retry.Backoff = 500 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.TopicChannelLogs).Msg("Kafka producer initialized successfully")

	return newProducer(producer, cfg.TopicChannelLogs, metrics, logger), nil
}

func newProducer(p sarama.SyncProducer, topic string, metrics ProducerMetrics, logger zerolog.Logger) *Producer {
	return &Producer{
		producer: p,
		topic:    topic,
		metrics:  metrics,
		logger:   logger.With().Str("component", "kafka_producer").Logger(),
	}
}

// Publish enqueues a post for chatID. Events for one chat share a partition
// so they are delivered in order.
func (p *Producer) Publish(_ context.Context, chatID int64, kind, text string) error {
	data, err := json.Marshal(ChannelLogEvent{
		Kind:      kind,
		ChatID:    chatID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		p.metrics.RecordKafkaError("marshal")
		return fmt.Errorf("failed to marshal channel log event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(chatID, 10)),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		p.metrics.RecordKafkaError("send")
		p.logger.Error().Err(err).Str("topic", p.topic).Msg("Failed to send Kafka message")
		return err
	}

	p.metrics.RecordKafkaMessage()
	p.logger.Debug().
		Str("topic", p.topic).
		Str("kind", kind).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Kafka message sent successfully")
	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed successfully")
	return nil
}
