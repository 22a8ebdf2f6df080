package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jihoon-dev/concert-reservation/internal/lock"
	"github.com/jihoon-dev/concert-reservation/internal/model"
	"github.com/jihoon-dev/concert-reservation/internal/repository"
)

// queueTokenHeader carries the waiting-queue token on gated endpoints.
const queueTokenHeader = "X-Queue-Token"

// getUserID extracts the user_id placed in the context by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// respondDomainError maps domain sentinels to HTTP responses so every
// handler reports the same status for the same failure.
func respondDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lock.ErrAcquisitionFailed), errors.Is(err, lock.ErrInterrupted):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "resource busy, retry later"})
	case errors.Is(err, model.ErrTokenNotActive):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "queue token not active"})
	case errors.Is(err, model.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "queue token expired, re-enter the queue"})
	case errors.Is(err, model.ErrSeatNotAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat not available"})
	case errors.Is(err, model.ErrScheduleClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "schedule closed"})
	case errors.Is(err, model.ErrNotReservationOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not reservation owner"})
	case errors.Is(err, model.ErrReservationNotPayable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation not payable"})
	case errors.Is(err, model.ErrInsufficientBalance):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient balance"})
	case errors.Is(err, model.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	case errors.Is(err, repository.ErrTokenNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "queue token not found"})
	case errors.Is(err, repository.ErrConcertNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
	case errors.Is(err, repository.ErrScheduleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	case errors.Is(err, repository.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrPaymentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
	case errors.Is(err, repository.ErrPointNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "point balance not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// parseIDParam parses a positive uint64 path parameter.
func parseIDParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
