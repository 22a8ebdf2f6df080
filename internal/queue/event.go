// Package queue defines message payloads exchanged over the message
// broker and the background workers that publish and consume them.
package queue

import "time"

// Queue names on the broker.  Both are durable; the DLQ receives
// notices that exhausted their redeliveries and holds them for manual
// inspection.
const (
	SeatExpiredQueue    = "seat.expired"
	SeatExpiredDLQQueue = "seat.expired.dlq"
)

// SeatExpiredEvent is the batched expiry notice published by the
// scanner: one message per schedule per tick rather than one per seat,
// bounding message volume under bursty expiration.  NoticeID makes
// redeliveries recognizable to the consumer's idempotency guard.
type SeatExpiredEvent struct {
	NoticeID   string    `json:"notice_id"`
	ScheduleID uint64    `json:"schedule_id"`
	SeatIDs    []uint64  `json:"seat_ids"`
	ExpiredAt  time.Time `json:"expired_at"`
}
