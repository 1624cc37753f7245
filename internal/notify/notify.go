// Package notify delivers booking confirmations.  Every implementation
// satisfies service.Notifier: Send never returns an error and reports
// only whether the transport accepted the message.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/queue"
)

// LogNotifier is used when mail is disabled.  It records the confirmation
// in the log and reports it as not sent.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, recipient string, s model.BookingSummary) bool {
	log.Info().Str("recipient", recipient).Uint64("booking_id", s.BookingID).
		Str("date", s.Date.String()).Str("total", s.Total.String()).
		Msg("mail disabled; confirmation not delivered")
	return false
}

// EventPublisher is the part of queue.Publisher the dispatcher needs.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// QueueNotifier hands confirmations to RabbitMQ; a consumer running
// Mailer.HandleEvent sends them.  A message is considered sent once the broker
// accepts it.
type QueueNotifier struct {
	pub EventPublisher
}

func NewQueueNotifier(pub EventPublisher) *QueueNotifier {
	return &QueueNotifier{pub: pub}
}

func (n *QueueNotifier) Send(ctx context.Context, recipient string, s model.BookingSummary) bool {
	err := n.pub.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{Recipient: recipient, Summary: s})
	return err == nil
}
