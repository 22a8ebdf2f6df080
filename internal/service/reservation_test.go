package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihoon-dev/concert-reservation/internal/lock"
	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// keyedLock gives each lock key its own mutex, mimicking the mutual
// exclusion the Redis executor provides per key.
type keyedLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	fail  bool
}

func newKeyedLock() *keyedLock { return &keyedLock{locks: make(map[string]*sync.Mutex)} }

func (l *keyedLock) Execute(_ context.Context, key string, _, _ time.Duration, action func() error) error {
	if l.fail {
		return lock.ErrAcquisitionFailed
	}
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	defer m.Unlock()
	return action()
}

type fakeGate struct {
	mu       sync.Mutex
	validate func(call int) error
	calls    int
	expired  []string
}

func (g *fakeGate) ValidateActive(_ context.Context, token string) (model.QueueToken, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()
	if g.validate != nil {
		if err := g.validate(call); err != nil {
			return model.QueueToken{}, err
		}
	}
	return model.QueueToken{Token: token, Status: model.TokenActive}, nil
}

func (g *fakeGate) GetStatus(_ context.Context, token string) (model.QueueToken, error) {
	return model.QueueToken{Token: token, Status: model.TokenActive}, nil
}

func (g *fakeGate) ExpireToken(_ context.Context, t model.QueueToken) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expired = append(g.expired, t.Token)
	return nil
}

type fakeScheduleReader struct {
	schedule model.ConcertSchedule
	err      error
}

func (r *fakeScheduleReader) GetSchedule(context.Context, uint64) (model.ConcertSchedule, error) {
	return r.schedule, r.err
}

// fakeReservationStore admits exactly one hold per seat, like the
// status-guarded UPDATE in the real store.
type fakeReservationStore struct {
	mu       sync.Mutex
	held     map[uint64]bool
	reserves int
	nextID   uint64
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{held: make(map[uint64]bool)}
}

func (s *fakeReservationStore) ReserveSeat(_ context.Context, userID, _, seatID uint64, _ string, now time.Time, hold time.Duration) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserves++
	if s.held[seatID] {
		return model.Reservation{}, model.ErrSeatNotAvailable
	}
	s.held[seatID] = true
	s.nextID++
	r := model.NewReservation(userID, seatID, now, hold)
	r.ID = s.nextID
	return r, nil
}

func (s *fakeReservationStore) GetByID(context.Context, uint64) (model.Reservation, error) {
	return model.Reservation{}, nil
}

func (s *fakeReservationStore) FindAllByUser(context.Context, uint64) ([]model.Reservation, error) {
	return nil, nil
}

type fakeCache struct {
	evictions int32
}

func (c *fakeCache) EvictAvailableSeats(context.Context, uint64) {
	atomic.AddInt32(&c.evictions, 1)
}

func openSchedule() model.ConcertSchedule {
	return model.ConcertSchedule{ID: 1, ShowDate: time.Now().UTC().Add(48 * time.Hour)}
}

func TestReservationCreateSingleWinner(t *testing.T) {
	t.Parallel()

	store := newFakeReservationStore()
	cache := &fakeCache{}
	svc := NewReservationService(&fakeGate{}, &fakeScheduleReader{schedule: openSchedule()},
		store, cache, newKeyedLock(), time.Second, 5*time.Second, 5*time.Minute)

	const attempts = 50
	var wg sync.WaitGroup
	var wins, conflicts int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), userID, 1, 10, "tok")
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case err == model.ErrSeatNotAvailable:
				atomic.AddInt32(&conflicts, 1)
			}
		}(uint64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(attempts-1), conflicts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&cache.evictions))
}

func TestReservationCreateRevalidatesInsideLock(t *testing.T) {
	t.Parallel()

	// The token passes the pre-check but lapses before the lock is held.
	gate := &fakeGate{validate: func(call int) error {
		if call >= 2 {
			return model.ErrTokenExpired
		}
		return nil
	}}
	store := newFakeReservationStore()
	svc := NewReservationService(gate, &fakeScheduleReader{schedule: openSchedule()},
		store, &fakeCache{}, newKeyedLock(), time.Second, 5*time.Second, 5*time.Minute)

	_, err := svc.Create(context.Background(), 1, 1, 10, "tok")
	assert.ErrorIs(t, err, model.ErrTokenExpired)
	assert.Equal(t, 0, store.reserves)
}

func TestReservationCreateInactiveToken(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{validate: func(int) error { return model.ErrTokenNotActive }}
	store := newFakeReservationStore()
	svc := NewReservationService(gate, &fakeScheduleReader{schedule: openSchedule()},
		store, &fakeCache{}, newKeyedLock(), time.Second, 5*time.Second, 5*time.Minute)

	_, err := svc.Create(context.Background(), 1, 1, 10, "tok")
	assert.ErrorIs(t, err, model.ErrTokenNotActive)
	assert.Equal(t, 0, store.reserves)
}

func TestReservationCreateScheduleClosed(t *testing.T) {
	t.Parallel()

	past := model.ConcertSchedule{ID: 1, ShowDate: time.Now().UTC().Add(-48 * time.Hour)}
	store := newFakeReservationStore()
	svc := NewReservationService(&fakeGate{}, &fakeScheduleReader{schedule: past},
		store, &fakeCache{}, newKeyedLock(), time.Second, 5*time.Second, 5*time.Minute)

	_, err := svc.Create(context.Background(), 1, 1, 10, "tok")
	assert.ErrorIs(t, err, model.ErrScheduleClosed)
	assert.Equal(t, 0, store.reserves)
}

func TestReservationCreateLockFailureSurfaces(t *testing.T) {
	t.Parallel()

	locks := newKeyedLock()
	locks.fail = true
	store := newFakeReservationStore()
	cache := &fakeCache{}
	svc := NewReservationService(&fakeGate{}, &fakeScheduleReader{schedule: openSchedule()},
		store, cache, locks, time.Second, 5*time.Second, 5*time.Minute)

	_, err := svc.Create(context.Background(), 1, 1, 10, "tok")
	assert.ErrorIs(t, err, lock.ErrAcquisitionFailed)
	assert.Equal(t, 0, store.reserves)
	assert.Equal(t, int32(0), atomic.LoadInt32(&cache.evictions))
}

func TestReservationCreateHoldWindow(t *testing.T) {
	t.Parallel()

	store := newFakeReservationStore()
	svc := NewReservationService(&fakeGate{}, &fakeScheduleReader{schedule: openSchedule()},
		store, &fakeCache{}, newKeyedLock(), time.Second, 5*time.Second, 5*time.Minute)

	before := time.Now()
	res, err := svc.Create(context.Background(), 1, 1, 10, "tok")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationTemporary, res.Status)
	assert.WithinDuration(t, before.Add(5*time.Minute), res.ExpiresAt, 5*time.Second)
}
