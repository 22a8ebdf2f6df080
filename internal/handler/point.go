package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jihoon-dev/concert-reservation/internal/model"
	"github.com/jihoon-dev/concert-reservation/internal/service"
)

// PointHandler exposes the point balance and ledger endpoints.
type PointHandler struct {
	Points *service.PointService
}

func NewPointHandler(points *service.PointService) *PointHandler {
	if points == nil {
		panic("nil service passed to NewPointHandler")
	}
	return &PointHandler{Points: points}
}

type amountReq struct {
	Amount int64 `json:"amount"`
}

type balanceResp struct {
	UserID  uint64 `json:"user_id"`
	Balance int64  `json:"balance"`
}

type historyEntry struct {
	Amount    int64     `json:"amount"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// GetBalance handles GET /v1/points.
func (h *PointHandler) GetBalance(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := h.Points.Get(c.Request().Context(), userID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, balanceResp{UserID: p.UserID, Balance: p.Balance})
}

// History handles GET /v1/points/history, newest entries first.
func (h *PointHandler) History(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	entries, err := h.Points.History(c.Request().Context(), userID)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{Amount: e.Amount, Type: e.Type, CreatedAt: e.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"history": out})
}

// Charge handles POST /v1/points/charge.
func (h *PointHandler) Charge(c echo.Context) error {
	return h.mutate(c, h.Points.Charge)
}

// Use handles POST /v1/points/use.
func (h *PointHandler) Use(c echo.Context) error {
	return h.mutate(c, h.Points.Use)
}

func (h *PointHandler) mutate(c echo.Context, op func(context.Context, uint64, int64) (model.Point, error)) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := op(c.Request().Context(), userID, req.Amount)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, balanceResp{UserID: p.UserID, Balance: p.Balance})
}
