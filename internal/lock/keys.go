package lock

import "fmt"

// PromotionKey serializes admission-gate promotion and renumbering so
// two instances can never promote overlapping token sets.
const PromotionKey = "lock:queue:promotion"

// SeatKey scopes a lock to a single seat within a schedule.
func SeatKey(scheduleID, seatID uint64) string {
	return fmt.Sprintf("lock:seat:%d:%d", scheduleID, seatID)
}

// PointKey scopes a lock to one user's point balance.
func PointKey(userID uint64) string {
	return fmt.Sprintf("lock:point:%d", userID)
}
