package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRestoreStore struct {
	calls    int
	gotSeats []uint64
	err      error
}

func (s *fakeRestoreStore) RestoreExpired(_ context.Context, seatIDs []uint64) (int64, error) {
	s.calls++
	s.gotSeats = seatIDs
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(seatIDs)), nil
}

type fakeEvictCache struct {
	evicted []uint64
}

func (c *fakeEvictCache) EvictAvailableSeats(_ context.Context, scheduleID uint64) {
	c.evicted = append(c.evicted, scheduleID)
}

// fakeGuard tracks claimed notice IDs in memory.
type fakeGuard struct {
	claimed  map[string]bool
	released []string
}

func newFakeGuard() *fakeGuard { return &fakeGuard{claimed: make(map[string]bool)} }

func (g *fakeGuard) FirstDelivery(_ context.Context, noticeID string) (bool, error) {
	if g.claimed[noticeID] {
		return false, nil
	}
	g.claimed[noticeID] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, noticeID string) {
	delete(g.claimed, noticeID)
	g.released = append(g.released, noticeID)
}

func noticeBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(SeatExpiredEvent{
		NoticeID:   "notice-1",
		ScheduleID: 3,
		SeatIDs:    []uint64{10, 11, 12},
		ExpiredAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return body
}

func TestRestorerHandle(t *testing.T) {
	t.Parallel()

	store := &fakeRestoreStore{}
	cache := &fakeEvictCache{}
	r := NewRestorer(store, cache, newFakeGuard())

	require.NoError(t, r.Handle(context.Background(), noticeBody(t)))
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, []uint64{10, 11, 12}, store.gotSeats)
	assert.Equal(t, []uint64{3}, cache.evicted)
}

func TestRestorerSkipsDuplicateNotice(t *testing.T) {
	t.Parallel()

	store := &fakeRestoreStore{}
	r := NewRestorer(store, &fakeEvictCache{}, newFakeGuard())
	body := noticeBody(t)

	require.NoError(t, r.Handle(context.Background(), body))
	// Redelivery of the same notice is acked without touching storage.
	require.NoError(t, r.Handle(context.Background(), body))
	assert.Equal(t, 1, store.calls)
}

func TestRestorerReleasesClaimOnFailure(t *testing.T) {
	t.Parallel()

	store := &fakeRestoreStore{err: errors.New("db down")}
	guard := newFakeGuard()
	cache := &fakeEvictCache{}
	r := NewRestorer(store, cache, guard)
	body := noticeBody(t)

	err := r.Handle(context.Background(), body)
	require.Error(t, err)
	assert.Equal(t, []string{"notice-1"}, guard.released)
	assert.Empty(t, cache.evicted)

	// The retry is not treated as a duplicate.
	store.err = nil
	require.NoError(t, r.Handle(context.Background(), body))
	assert.Equal(t, 2, store.calls)
}

func TestRestorerRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	store := &fakeRestoreStore{}
	r := NewRestorer(store, &fakeEvictCache{}, newFakeGuard())

	err := r.Handle(context.Background(), []byte("not json"))
	require.Error(t, err)
	assert.Equal(t, 0, store.calls)
}
