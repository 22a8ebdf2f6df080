package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jihoon-dev/concert-reservation/internal/admission"
	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// QueueHandler exposes the waiting-queue surface: token issuance and
// status polling.  The authenticated user ID comes from the JWT
// middleware; the queue token itself travels in the X-Queue-Token
// header on status polls.
type QueueHandler struct {
	Gate *admission.Service
}

func NewQueueHandler(gate *admission.Service) *QueueHandler {
	if gate == nil {
		panic("nil gate passed to NewQueueHandler")
	}
	return &QueueHandler{Gate: gate}
}

type queueTokenResp struct {
	Token       string     `json:"token"`
	Status      string     `json:"status"`
	Position    int        `json:"position"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func toQueueTokenResp(t model.QueueToken) queueTokenResp {
	return queueTokenResp{
		Token:       t.Token,
		Status:      t.Status,
		Position:    t.Position,
		ActivatedAt: t.ActivatedAt,
		ExpiresAt:   t.ExpiresAt,
	}
}

// IssueToken handles POST /v1/queue/token.  Issuance is idempotent: a
// user who already holds a live token gets that token back with its
// current position, not a new entry at the back of the line.
func (h *QueueHandler) IssueToken(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tok, err := h.Gate.IssueToken(c.Request().Context(), userID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toQueueTokenResp(tok))
}

// GetStatus handles GET /v1/queue/status with the token in X-Queue-Token.
func (h *QueueHandler) GetStatus(c echo.Context) error {
	raw := strings.TrimSpace(c.Request().Header.Get(queueTokenHeader))
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing queue token"})
	}
	tok, err := h.Gate.GetStatus(c.Request().Context(), raw)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toQueueTokenResp(tok))
}
