package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jihoon-dev/concert-reservation/internal/model"
	"github.com/jihoon-dev/concert-reservation/internal/service"
)

// ConcertHandler serves the public browse endpoints.
type ConcertHandler struct {
	Concerts *service.ConcertService
}

func NewConcertHandler(concerts *service.ConcertService) *ConcertHandler {
	if concerts == nil {
		panic("nil service passed to NewConcertHandler")
	}
	return &ConcertHandler{Concerts: concerts}
}

type concertResp struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

type scheduleResp struct {
	ID        uint64    `json:"id"`
	ConcertID uint64    `json:"concert_id"`
	ShowDate  time.Time `json:"show_date"`
}

type seatResp struct {
	ID         uint64 `json:"id"`
	SeatNumber uint32 `json:"seat_number"`
	Status     string `json:"status"`
	Price      int64  `json:"price"`
}

// ListConcerts handles GET /v1/concerts.
func (h *ConcertHandler) ListConcerts(c echo.Context) error {
	concerts, err := h.Concerts.ListConcerts(c.Request().Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]concertResp, 0, len(concerts))
	for _, con := range concerts {
		out = append(out, concertResp{ID: con.ID, Title: con.Title})
	}
	return c.JSON(http.StatusOK, echo.Map{"concerts": out})
}

// ListSchedules handles GET /v1/concerts/:id/schedules.
func (h *ConcertHandler) ListSchedules(c echo.Context) error {
	concertID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	schedules, err := h.Concerts.ListSchedules(c.Request().Context(), concertID)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]scheduleResp, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, scheduleResp{ID: s.ID, ConcertID: s.ConcertID, ShowDate: s.ShowDate})
	}
	return c.JSON(http.StatusOK, echo.Map{"schedules": out})
}

// AvailableSeats handles GET /v1/schedules/:id/seats.  The snapshot may
// be up to the cache TTL stale; the reservation path re-checks under
// the seat lock.
func (h *ConcertHandler) AvailableSeats(c echo.Context) error {
	scheduleID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	seats, err := h.Concerts.AvailableSeats(c.Request().Context(), scheduleID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": toSeatResps(seats)})
}

func toSeatResps(seats []model.Seat) []seatResp {
	out := make([]seatResp, 0, len(seats))
	for _, s := range seats {
		out = append(out, seatResp{ID: s.ID, SeatNumber: s.SeatNumber, Status: s.Status, Price: s.Price})
	}
	return out
}
