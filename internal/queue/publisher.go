package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher emits hold events.  Implementations must be safe for
// concurrent use; callers treat errors as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, ev HoldEvent) error
}

// Nop discards events.  Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, HoldEvent) error { return nil }

// AMQPPublisher dials the broker for every publish.  Hold events are rare
// (a few per booking) so a pooled connection is not worth its reconnect
// handling.
type AMQPPublisher struct {
	url   string
	queue string
	log   *logrus.Entry
}

func NewAMQPPublisher(url, queue string, log *logrus.Entry) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &AMQPPublisher{url: url, queue: queue, log: log.WithField("component", "hold-publisher")}
}

// Publish declares the durable queue and sends ev as a persistent JSON
// message on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, ev HoldEvent) error {
	log := p.log.WithFields(logrus.Fields{"type": ev.Type, "reservation_id": ev.ReservationID})
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
