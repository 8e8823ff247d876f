package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

const (
	TopicBookingCreated   = "campus.booking.created"
	TopicBookingCancelled = "campus.booking.cancelled"
	TopicSeatStatus       = "campus.seats.status"
)

// RequiredTopics is the full set of topics the service publishes to.
var RequiredTopics = []string{
	TopicBookingCreated,
	TopicBookingCancelled,
	TopicSeatStatus,
}

// Producer publishes booking lifecycle events. One writer serves all topics;
// the topic travels on the message.
type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NoopProducer stands in when Kafka is disabled by configuration.
type NoopProducer struct{}

func (NoopProducer) Publish(topic string, key string, value []byte) error { return nil }
func (NoopProducer) Close() error                                         { return nil }
