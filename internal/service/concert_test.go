package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihoon-dev/concert-reservation/internal/model"
	"github.com/jihoon-dev/concert-reservation/internal/repository"
)

type fakeConcertReader struct {
	concerts  []model.Concert
	schedules []model.ConcertSchedule
}

func (r *fakeConcertReader) ListConcerts(context.Context) ([]model.Concert, error) {
	return r.concerts, nil
}

func (r *fakeConcertReader) GetConcert(_ context.Context, id uint64) (model.Concert, error) {
	for _, c := range r.concerts {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Concert{}, repository.ErrConcertNotFound
}

func (r *fakeConcertReader) ListSchedules(context.Context, uint64) ([]model.ConcertSchedule, error) {
	return r.schedules, nil
}

func (r *fakeConcertReader) GetSchedule(_ context.Context, id uint64) (model.ConcertSchedule, error) {
	for _, s := range r.schedules {
		if s.ID == id {
			return s, nil
		}
	}
	return model.ConcertSchedule{}, repository.ErrScheduleNotFound
}

type fakeSeatLister struct {
	seats []model.Seat
	lists int
}

func (l *fakeSeatLister) ListAvailableBySchedule(context.Context, uint64) ([]model.Seat, error) {
	l.lists++
	return l.seats, nil
}

type fakeSnapshotCache struct {
	entries map[uint64][]model.Seat
	sets    int
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{entries: make(map[uint64][]model.Seat)}
}

func (c *fakeSnapshotCache) GetAvailableSeats(_ context.Context, scheduleID uint64) ([]model.Seat, bool) {
	seats, ok := c.entries[scheduleID]
	return seats, ok
}

func (c *fakeSnapshotCache) SetAvailableSeats(_ context.Context, scheduleID uint64, seats []model.Seat) {
	c.sets++
	c.entries[scheduleID] = seats
}

func browseFixture() (*fakeConcertReader, *fakeSeatLister, *fakeSnapshotCache) {
	concerts := &fakeConcertReader{
		concerts: []model.Concert{{ID: 1, Title: "Spring Live"}},
		schedules: []model.ConcertSchedule{
			{ID: 11, ConcertID: 1, ShowDate: time.Date(2026, 4, 1, 19, 0, 0, 0, time.UTC)},
		},
	}
	seats := &fakeSeatLister{seats: []model.Seat{
		{ID: 100, ScheduleID: 11, SeatNumber: 1, Status: model.SeatAvailable, Price: 30000},
		{ID: 101, ScheduleID: 11, SeatNumber: 2, Status: model.SeatAvailable, Price: 30000},
	}}
	return concerts, seats, newFakeSnapshotCache()
}

func TestAvailableSeatsReadThrough(t *testing.T) {
	t.Parallel()

	concerts, seats, cache := browseFixture()
	svc := NewConcertService(concerts, seats, cache)
	ctx := context.Background()

	got, err := svc.AvailableSeats(ctx, 11)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, seats.lists)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from cache.
	got, err = svc.AvailableSeats(ctx, 11)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, seats.lists)
}

func TestAvailableSeatsUnknownSchedule(t *testing.T) {
	t.Parallel()

	concerts, seats, cache := browseFixture()
	svc := NewConcertService(concerts, seats, cache)

	_, err := svc.AvailableSeats(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrScheduleNotFound)
	assert.Equal(t, 0, seats.lists)
}

func TestListSchedulesUnknownConcert(t *testing.T) {
	t.Parallel()

	concerts, seats, cache := browseFixture()
	svc := NewConcertService(concerts, seats, cache)

	_, err := svc.ListSchedules(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrConcertNotFound)

	schedules, err := svc.ListSchedules(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}
