package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/checkpay/internal/server/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of *amqp.Channel used here.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier enqueues an e-mail job on a durable RabbitMQ queue for a
// separate mail worker to deliver.
type AMQPNotifier struct {
	publisher Publisher
	queue     string
	to        []string
	closers   []func() error
}

// NewAMQPNotifier dials url, opens a channel and declares queue as durable.
func NewAMQPNotifier(url, queue string, to []string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", queue, err)
	}

	n := NewAMQPNotifierWithPublisher(ch, queue, to)
	n.closers = []func() error{ch.Close, conn.Close}
	return n, nil
}

// NewAMQPNotifierWithPublisher allows injecting a test publisher.
func NewAMQPNotifierWithPublisher(p Publisher, queue string, to []string) *AMQPNotifier {
	return &AMQPNotifier{publisher: p, queue: queue, to: to}
}

func (n *AMQPNotifier) Name() string { return "amqp" }

// EmailJob is the message body consumed by the mail worker.
type EmailJob struct {
	Type    string       `json:"type"`
	To      []string     `json:"to,omitempty"`
	Subject string       `json:"subject"`
	Body    string       `json:"body"`
	Payload EventPayment `json:"payload"`
}

const emailJobType = "payment_email"

func (n *AMQPNotifier) Notify(ctx context.Context, p *models.Payment, actingUser string) error {
	s := FormatSummary(p, actingUser)
	body, err := json.Marshal(EmailJob{
		Type:    emailJobType,
		To:      n.to,
		Subject: s.Subject,
		Body:    s.Body,
		Payload: newEventPayment(p, actingUser),
	})
	if err != nil {
		return fmt.Errorf("amqp marshal: %w", err)
	}

	err = n.publisher.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key is the queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    p.ID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Close releases the channel and connection opened by NewAMQPNotifier.
func (n *AMQPNotifier) Close() error {
	var first error
	for _, c := range n.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
