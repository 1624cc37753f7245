// Package queue carries booking confirmations over RabbitMQ: a publisher
// used by the request path and a consumer that hands each event to a
// delivery function.
package queue

import (
	"context"
	"time"

	"github.com/iliyamo/salon-reservation/internal/model"
)

// DefaultQueue is the durable queue confirmations are routed to.
const DefaultQueue = "booking.confirmed"

// BookingConfirmedEvent is published after a booking commits.  It holds
// everything needed to render the confirmation without reading the
// database again.
type BookingConfirmedEvent struct {
	Recipient   string               `json:"recipient"`
	Summary     model.BookingSummary `json:"summary"`
	PublishedAt time.Time            `json:"published_at"`
}

// Handler processes one event.  A returned error rejects the message.
type Handler func(ctx context.Context, ev BookingConfirmedEvent) error
