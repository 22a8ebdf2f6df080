package service

import (
	"context"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// ConcertReader is satisfied by repository.ConcertRepo.
type ConcertReader interface {
	ListConcerts(ctx context.Context) ([]model.Concert, error)
	GetConcert(ctx context.Context, id uint64) (model.Concert, error)
	ListSchedules(ctx context.Context, concertID uint64) ([]model.ConcertSchedule, error)
	GetSchedule(ctx context.Context, id uint64) (model.ConcertSchedule, error)
}

// SeatLister is satisfied by repository.SeatRepo.
type SeatLister interface {
	ListAvailableBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error)
}

// SeatSnapshotCache is satisfied by cache.SeatCache.
type SeatSnapshotCache interface {
	GetAvailableSeats(ctx context.Context, scheduleID uint64) ([]model.Seat, bool)
	SetAvailableSeats(ctx context.Context, scheduleID uint64, seats []model.Seat)
}

// ConcertService serves the browse surface: concerts, schedules and the
// available-seat snapshot behind a short-TTL read-through cache.
type ConcertService struct {
	concerts ConcertReader
	seats    SeatLister
	cache    SeatSnapshotCache
}

// NewConcertService wires the browse reads.
func NewConcertService(concerts ConcertReader, seats SeatLister, cache SeatSnapshotCache) *ConcertService {
	if concerts == nil || seats == nil || cache == nil {
		panic("nil dependency passed to NewConcertService")
	}
	return &ConcertService{concerts: concerts, seats: seats, cache: cache}
}

// ListConcerts returns every concert.
func (s *ConcertService) ListConcerts(ctx context.Context) ([]model.Concert, error) {
	return s.concerts.ListConcerts(ctx)
}

// ListSchedules returns the schedules of a concert, checking the
// concert exists first so an unknown ID maps to not found rather than
// an empty list.
func (s *ConcertService) ListSchedules(ctx context.Context, concertID uint64) ([]model.ConcertSchedule, error) {
	if _, err := s.concerts.GetConcert(ctx, concertID); err != nil {
		return nil, err
	}
	return s.concerts.ListSchedules(ctx, concertID)
}

// AvailableSeats returns the AVAILABLE seats for a schedule.  The
// snapshot is served from cache when present; a miss reads the source
// of truth and repopulates.  Staleness is bounded by the cache TTL and
// by eviction after any commit that changes availability.
func (s *ConcertService) AvailableSeats(ctx context.Context, scheduleID uint64) ([]model.Seat, error) {
	if _, err := s.concerts.GetSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	if seats, ok := s.cache.GetAvailableSeats(ctx, scheduleID); ok {
		return seats, nil
	}
	seats, err := s.seats.ListAvailableBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	s.cache.SetAvailableSeats(ctx, scheduleID, seats)
	return seats, nil
}
