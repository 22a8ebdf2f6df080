package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jihoon-dev/concert-reservation/internal/model"
	"github.com/jihoon-dev/concert-reservation/internal/service"
)

// ReservationHandler exposes the gated reservation endpoints.  The
// create path requires both a valid access token and an ACTIVE queue
// token in X-Queue-Token.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	if reservations == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations}
}

type createReservationReq struct {
	ScheduleID uint64 `json:"schedule_id"`
	SeatID     uint64 `json:"seat_id"`
}

type reservationResp struct {
	ID         uint64    `json:"id"`
	SeatID     uint64    `json:"seat_id"`
	Status     string    `json:"status"`
	ReservedAt time.Time `json:"reserved_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toReservationResp(r model.Reservation) reservationResp {
	return reservationResp{
		ID:         r.ID,
		SeatID:     r.SeatID,
		Status:     r.Status,
		ReservedAt: r.ReservedAt,
		ExpiresAt:  r.ExpiresAt,
	}
}

// Create handles POST /v1/reservations.  A successful response carries
// the temporary hold and its expiry; the client must pay before then.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	queueToken := strings.TrimSpace(c.Request().Header.Get(queueTokenHeader))
	if queueToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing queue token"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ScheduleID == 0 || req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id and seat_id are required"})
	}

	res, err := h.Reservations.Create(c.Request().Context(), userID, req.ScheduleID, req.SeatID, queueToken)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// List handles GET /v1/reservations for the authenticated user.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservations, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]reservationResp, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, toReservationResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}
