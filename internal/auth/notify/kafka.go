package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/segmentio/kafka-go"
)

// ResetEvent is published for an external email service to render and send.
type ResetEvent struct {
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	Link     string    `json:"link,omitempty"`
	IssuedAt time.Time `json:"issued_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaNotifier struct {
	w     messageWriter
	topic string
	now   func() time.Time
}

// NewKafkaNotifier publishes to topic, keyed by recipient email so that all
// events for one address land on the same partition.
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("notify: kafka requires brokers and a topic")
	}
	return &KafkaNotifier{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
		now:   time.Now,
	}, nil
}

func (n *KafkaNotifier) SendPasswordReset(ctx context.Context, to, code, link string) error {
	l := slogx.FromContext(ctx).With(
		slog.String("component", "notify.kafka"),
		slog.String("topic", n.topic),
	)

	value, err := json.Marshal(ResetEvent{
		Email:    to,
		Code:     code,
		Link:     link,
		IssuedAt: n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("notify: kafka marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(to),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("password_reset")},
		},
	}
	if err := n.w.WriteMessages(ctx, msg); err != nil {
		l.Error("kafka write failed", slog.Any("err", err))
		return fmt.Errorf("notify: kafka: %w", err)
	}
	l.Debug("password reset event published", slog.Int("value_len", len(value)))
	return nil
}

func (n *KafkaNotifier) Close() error { return n.w.Close() }
