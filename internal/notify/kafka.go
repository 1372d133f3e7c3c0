package notify

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"

	"github.com/xenking/orders/internal/domain/order"
)

var _ order.Notifier = (*Kafka)(nil)

// MessageWriter is the subset of *kafka.Writer used by Kafka.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka writes each notification as one message keyed by "orders", so all
// notifications land on the same partition in send order.
type Kafka struct {
	w   MessageWriter
	now clock
}

// NewKafka returns a Kafka notifier using w.
func NewKafka(w MessageWriter) *Kafka {
	return &Kafka{w: w}
}

// NewKafkaWriter returns a synchronous writer for topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func (k *Kafka) Notify(ctx context.Context, message string) error {
	env := k.now.envelope(message)
	err := k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte("orders"),
		Value: env.Bytes(),
		Time:  env.SentAt,
	})
	if err != nil {
		return errors.Wrap(err, "write kafka message")
	}
	return nil
}
