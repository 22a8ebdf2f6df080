package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihoon-dev/concert-reservation/internal/model"
	"github.com/jihoon-dev/concert-reservation/internal/service"
)

type memPointStore struct {
	mu      sync.Mutex
	balance int64
}

func (s *memPointStore) GetByUser(_ context.Context, userID uint64) (model.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Point{UserID: userID, Balance: s.balance}, nil
}

func (s *memPointStore) HistoryByUser(context.Context, uint64) ([]model.PointHistory, error) {
	return nil, nil
}

func (s *memPointStore) Charge(_ context.Context, userID uint64, amount int64) (model.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Point{UserID: userID, Balance: s.balance}
	if err := p.Charge(amount); err != nil {
		return model.Point{}, err
	}
	s.balance = p.Balance
	return p, nil
}

func (s *memPointStore) Use(_ context.Context, userID uint64, amount int64) (model.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Point{UserID: userID, Balance: s.balance}
	if err := p.Use(amount); err != nil {
		return model.Point{}, err
	}
	s.balance = p.Balance
	return p, nil
}

type passthroughLock struct{}

func (passthroughLock) Execute(_ context.Context, _ string, _, _ time.Duration, action func() error) error {
	return action()
}

func newPointTestContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	return c, rec
}

func TestPointHandlerChargeAndBalance(t *testing.T) {
	t.Parallel()

	store := &memPointStore{}
	h := NewPointHandler(service.NewPointService(store, passthroughLock{}, time.Second, 5*time.Second))

	c, rec := newPointTestContext(t, http.MethodPost, `{"amount":1500}`)
	require.NoError(t, h.Charge(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp balanceResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1500), resp.Balance)

	c, rec = newPointTestContext(t, http.MethodGet, "")
	require.NoError(t, h.GetBalance(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1500), resp.Balance)
}

func TestPointHandlerUseInsufficientBalance(t *testing.T) {
	t.Parallel()

	store := &memPointStore{balance: 100}
	h := NewPointHandler(service.NewPointService(store, passthroughLock{}, time.Second, 5*time.Second))

	c, rec := newPointTestContext(t, http.MethodPost, `{"amount":200}`)
	require.NoError(t, h.Use(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient balance")
}

func TestPointHandlerInvalidAmount(t *testing.T) {
	t.Parallel()

	h := NewPointHandler(service.NewPointService(&memPointStore{}, passthroughLock{}, time.Second, 5*time.Second))

	c, rec := newPointTestContext(t, http.MethodPost, `{"amount":-5}`)
	require.NoError(t, h.Charge(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPointHandlerUnauthorized(t *testing.T) {
	t.Parallel()

	h := NewPointHandler(service.NewPointService(&memPointStore{}, passthroughLock{}, time.Second, 5*time.Second))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetBalance(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
