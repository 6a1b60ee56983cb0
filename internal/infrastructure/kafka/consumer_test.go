package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	for {
		r.mu.Lock()
		if len(r.queue) > 0 {
			msg := r.queue[0]
			r.queue = r.queue[1:]
			r.mu.Unlock()
			return msg, nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return kafka.Message{}, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func encode(t *testing.T, e ChannelLogEvent) []byte {
	t.Helper()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestConsumerRelaysAndCommits(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: encode(t, ChannelLogEvent{ChatID: 10, Text: "a"})},
		{Offset: 2, Value: []byte("not json")},
		{Offset: 3, Value: encode(t, ChannelLogEvent{ChatID: 20, Text: "fail"})},
		{Offset: 4, Value: encode(t, ChannelLogEvent{ChatID: 30, Text: "b"})},
	}}

	var mu sync.Mutex
	var got []string
	handler := func(_ context.Context, e ChannelLogEvent) error {
		if e.Text == "fail" {
			return errors.New("send failed")
		}
		mu.Lock()
		got = append(got, e.Text)
		mu.Unlock()
		return nil
	}

	c := newConsumer(reader, handler, zerolog.Nop())
	c.Start()

	deadline := time.Now().Add(2 * time.Second)
	for len(reader.committedOffsets()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	committed := reader.committedOffsets()
	want := []int64{1, 2, 4}
	if len(committed) != len(want) {
		t.Fatalf("committed = %v, want %v", committed, want)
	}
	for i := range want {
		if committed[i] != want[i] {
			t.Fatalf("committed = %v, want %v", committed, want)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("handled = %v", got)
	}
	if !reader.closed {
		t.Error("reader was not closed")
	}
}
