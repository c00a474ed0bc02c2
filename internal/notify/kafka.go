package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/checkpay/internal/server/models"
	"github.com/segmentio/kafka-go"
)

// EventPaymentCreated is the event name carried by bus messages.
const EventPaymentCreated = "payment.created"

// Writer defines the subset of kafka.Writer we need, so tests can swap it.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes a payment.created event keyed by payment ID.
type KafkaNotifier struct {
	writer Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return NewKafkaNotifierWithWriter(w)
}

// NewKafkaNotifierWithWriter allows injecting a test writer.
func NewKafkaNotifierWithWriter(w Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) Name() string { return "kafka" }

type busEvent struct {
	Event   string       `json:"event"`
	Payload EventPayment `json:"payload"`
}

func (n *KafkaNotifier) Notify(ctx context.Context, p *models.Payment, actingUser string) error {
	b, err := json.Marshal(busEvent{Event: EventPaymentCreated, Payload: newEventPayment(p, actingUser)})
	if err != nil {
		return fmt.Errorf("kafka marshal: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(p.ID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(EventPaymentCreated)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
