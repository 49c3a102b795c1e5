package pkg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaProducer publishes JSON documents to one topic. Messages with the
// same key land on the same partition.
type KafkaProducer struct {
	writer MessageWriter
	topic  string
}

func NewKafkaProducer(cfg KafkaConfig) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaProducerWithWriter(w, cfg.Topic)
}

func NewKafkaProducerWithWriter(w MessageWriter, topic string) *KafkaProducer {
	return &KafkaProducer{writer: w, topic: topic}
}

func (p *KafkaProducer) Topic() string { return p.topic }

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// PublishJSON marshals v and writes it under key, tagging the message with
// an event-type header.
func (p *KafkaProducer) PublishJSON(ctx context.Context, key, eventType string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", eventType, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(eventType)}},
		Time:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", eventType, p.topic, err)
	}
	return nil
}
