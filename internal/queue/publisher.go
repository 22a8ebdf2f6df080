package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes expiry notices to the durable seat.expired queue.
// Messages are marked persistent so they survive broker restarts; the
// scanner tolerates publish failure by retrying on its next tick, so
// errors are simply returned.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher that dials url on each publish.  The
// scanner publishes at most a handful of messages per minute, so a
// persistent connection buys nothing over the simple dial.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishSeatExpired sends one batched expiry notice.
func (p *Publisher) PublishSeatExpired(ctx context.Context, event SeatExpiredEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare so publisher and consumer can start in any order.
	if _, err := ch.QueueDeclare(SeatExpiredQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", SeatExpiredQueue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
