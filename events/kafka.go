package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/yashrajoria/luxe-storefront/models"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events keyed by order id.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Event)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to kafka: %w", event.Event, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
