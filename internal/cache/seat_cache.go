// Package cache holds the read-through Redis cache for available seats.
// The cache is opportunistic and never authoritative: a stale entry can
// only make a doomed reservation attempt reach the seat lock, where it
// fails safely with the usual not-available outcome.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// SeatCache caches the AVAILABLE seat snapshot per schedule with a
// short TTL.  A nil Redis client disables caching entirely; every Get
// is then a miss and Set/Evict are no-ops.
type SeatCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeatCache returns a cache backed by rdb.  rdb may be nil.
func NewSeatCache(rdb *redis.Client, ttl time.Duration) *SeatCache {
	return &SeatCache{rdb: rdb, ttl: ttl}
}

func availableSeatsKey(scheduleID uint64) string {
	return fmt.Sprintf("seats:available:%d", scheduleID)
}

// GetAvailableSeats returns the cached snapshot and whether it was a hit.
func (c *SeatCache) GetAvailableSeats(ctx context.Context, scheduleID uint64) ([]model.Seat, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, availableSeatsKey(scheduleID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get failed: schedule=%d err=%v", scheduleID, err)
		}
		return nil, false
	}
	var seats []model.Seat
	if err := json.Unmarshal([]byte(raw), &seats); err != nil {
		log.Printf("cache: corrupt entry dropped: schedule=%d err=%v", scheduleID, err)
		c.EvictAvailableSeats(ctx, scheduleID)
		return nil, false
	}
	return seats, true
}

// SetAvailableSeats stores a snapshot.  Failures are logged only; the
// source of truth already answered the request.
func (c *SeatCache) SetAvailableSeats(ctx context.Context, scheduleID uint64, seats []model.Seat) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(seats)
	if err != nil {
		log.Printf("cache: marshal failed: schedule=%d err=%v", scheduleID, err)
		return
	}
	if err := c.rdb.Set(ctx, availableSeatsKey(scheduleID), raw, c.ttl).Err(); err != nil {
		log.Printf("cache: set failed: schedule=%d err=%v", scheduleID, err)
	}
}

// EvictAvailableSeats drops the snapshot for a schedule.  Called
// best-effort after any commit that changes seat availability.
func (c *SeatCache) EvictAvailableSeats(ctx context.Context, scheduleID uint64) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, availableSeatsKey(scheduleID)).Err(); err != nil {
		log.Printf("cache: evict failed: schedule=%d err=%v", scheduleID, err)
	}
}
