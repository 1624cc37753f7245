package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Publisher sends events to a durable queue.  Each Publish dials its own
// connection so a broker restart never leaves the publisher stale.
type Publisher struct {
	url   string
	queue string
}

func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{url: url, queue: queue}
}

// PublishBookingConfirmed publishes ev as a persistent JSON message on the
// default exchange.  Errors are logged and returned; callers decide
// whether they matter.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		log.Error().Err(err).Str("queue", p.queue).Msg("rabbitmq: queue declare failed")
		return err
	}

	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.PublishedAt,
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Uint64("booking_id", ev.Summary.BookingID).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
