package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jihoon-dev/concert-reservation/internal/service"
)

// PaymentHandler confirms temporary reservations by debiting points.
type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	if payments == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: payments}
}

type paymentReq struct {
	ReservationID uint64 `json:"reservation_id"`
}

type paymentResp struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// Get handles GET /v1/payments/:id for the authenticated user.
func (h *PaymentHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}
	p, err := h.Payments.Get(c.Request().Context(), userID, paymentID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, paymentResp{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		Amount:        p.Amount,
		CreatedAt:     p.CreatedAt,
	})
}

// Process handles POST /v1/payments.  The queue token in X-Queue-Token
// is consumed on success, releasing the admission slot.
func (h *PaymentHandler) Process(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	queueToken := strings.TrimSpace(c.Request().Header.Get(queueTokenHeader))
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}

	p, err := h.Payments.Process(c.Request().Context(), userID, req.ReservationID, queueToken)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, paymentResp{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		Amount:        p.Amount,
		CreatedAt:     p.CreatedAt,
	})
}
