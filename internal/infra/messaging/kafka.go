package messaging

import (
	"context"
	"log/slog"
	"time"

	"event-ticketing/internal/pkg/config"
	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/usecase/commands"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes outbox jobs to Kafka. Messages sharing a key land on the same
// partition, so events for one order stay ordered.
type KafkaPublisher struct {
	writer messageWriter
}

type Publisher interface {
	commands.EventPublisher
	Close() error
}

func NewPublisher(cfg config.Config) Publisher {
	if !cfg.Kafka.Enabled {
		slog.Info("kafka disabled, order events will only be logged")
		return logPublisher{}
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	slog.Info("kafka publisher initialized", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return errs.Wrapf(err, "kafka: publish to %s", topic)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type logPublisher struct{}

func (logPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	slog.InfoContext(ctx, "order event", "topic", topic, "key", key, "payload", string(payload))
	return nil
}

func (logPublisher) Close() error { return nil }
