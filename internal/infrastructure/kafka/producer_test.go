package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
)

type fakeMetrics struct {
	sent   int
	errors []string
}

func (f *fakeMetrics) RecordKafkaMessage()          { f.sent++ }
func (f *fakeMetrics) RecordKafkaError(kind string) { f.errors = append(f.errors, kind) }

func TestProducerPublish(t *testing.T) {
	mock := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event ChannelLogEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.ChatID != -100123 || event.Kind != "join" || event.Text != "hello" {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	m := &fakeMetrics{}
	p := newProducer(mock, "bot.channel-logs", m, zerolog.Nop())

	if err := p.Publish(context.Background(), -100123, "join", "hello"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if m.sent != 1 {
		t.Errorf("sent = %d, want 1", m.sent)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestProducerPublishFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	m := &fakeMetrics{}
	p := newProducer(mock, "bot.channel-logs", m, zerolog.Nop())

	err := p.Publish(context.Background(), 1, "main", "x")
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("Publish() error = %v, want ErrOutOfBrokers", err)
	}
	if len(m.errors) != 1 || m.errors[0] != "send" {
		t.Errorf("errors = %v", m.errors)
	}
	_ = p.Close()
}
