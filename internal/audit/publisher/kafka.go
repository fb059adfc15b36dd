package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"visitorreg/internal/audit"
	"visitorreg/internal/platform/kafka/producer"
)

// Producer is the subset of the platform Kafka producer the publisher needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher streams audit entries as JSON, keyed by target id so every entry
// for one visitor lands on the same partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaPublisher(p Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, entry *audit.Entry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	key := entry.TargetID
	if key == "" {
		key = entry.ID.String()
	}
	return p.producer.Produce(ctx, &producer.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			"action": string(entry.Action),
			"result": string(entry.Result),
		},
	})
}
