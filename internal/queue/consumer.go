package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// maxDeliveries bounds how often a failing notice is retried before it
// moves to the dead-letter queue for manual inspection.
const maxDeliveries = 5

const retryHeader = "x-retry-count"

// StartSeatRestoreConsumer connects to RabbitMQ, declares the
// seat.expired and seat.expired.dlq queues (durable) and consumes
// notices, delegating each to the Restorer.  It runs a reconnect loop
// with exponential backoff and returns only when ctx is cancelled.
//
// Ack discipline: the offset is committed (Ack) only after restoration
// succeeds.  On failure the notice is republished with an incremented
// retry counter, and after maxDeliveries it is published to the DLQ.
// A poison message is parked, never dropped.
func StartSeatRestoreConsumer(ctx context.Context, url string, restorer *Restorer) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("restore-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(ctx, conn, restorer); err != nil {
			log.Printf("restore-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, restorer *Restorer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Bound in-flight deliveries so a restoration backlog does not pile
	// up in memory.
	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("restore-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(SeatExpiredQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if _, err := ch.QueueDeclare(SeatExpiredDLQQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("dlq declare: %w", err)
	}

	msgs, err := ch.Consume(SeatExpiredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := restorer.Handle(ctx, d.Body); err != nil {
				retryDelivery(ctx, ch, d, err)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// retryDelivery republishes a failed notice with an incremented retry
// counter, or parks it on the DLQ once its deliveries are exhausted.
// The original delivery is acked either way; the requeued copy carries
// the state forward.
func retryDelivery(ctx context.Context, ch *amqp.Channel, d amqp.Delivery, cause error) {
	retries := retryCount(d.Headers)
	if retries+1 >= maxDeliveries {
		log.Printf("restore-consumer: retries exhausted, moving to DLQ: retries=%d err=%v", retries, cause)
		publishTo(ctx, ch, SeatExpiredDLQQueue, d, retries+1)
		_ = d.Ack(false)
		return
	}
	log.Printf("restore-consumer: handle failed, requeueing: retry=%d err=%v", retries+1, cause)
	publishTo(ctx, ch, SeatExpiredQueue, d, retries+1)
	_ = d.Ack(false)
}

func publishTo(ctx context.Context, ch *amqp.Channel, queueName string, d amqp.Delivery, retries int) {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[retryHeader] = int32(retries)
	pub := amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         d.Body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		// Last resort: put the original back on the queue unmodified.
		log.Printf("restore-consumer: republish to %s failed: %v", queueName, err)
		_ = d.Nack(false, true)
	}
}

func retryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch v := headers[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// StartDLQLogger drains the dead-letter queue into the log so parked
// notices are visible for manual inspection.  Messages are acked after
// logging; the log line is the inspection record.
func StartDLQLogger(ctx context.Context, url string) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := drainDLQ(ctx, conn); err != nil {
			log.Printf("dlq-logger: %v; reconnecting", err)
		}
		_ = conn.Close()
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func drainDLQ(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(SeatExpiredDLQQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("dlq declare: %w", err)
	}
	msgs, err := ch.Consume(SeatExpiredDLQQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("dlq consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			log.Printf("dlq-logger: dead-lettered notice: retries=%d body=%s", retryCount(d.Headers), d.Body)
			_ = d.Ack(false)
		}
	}
}
