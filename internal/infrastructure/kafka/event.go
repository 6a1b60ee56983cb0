// Package kafka relays log channel posts through a Kafka topic.
package kafka

import "time"

// ChannelLogEvent is one post destined for a log channel.
type ChannelLogEvent struct {
	Kind      string    `json:"kind"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
