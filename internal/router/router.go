// Package router wires handlers onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jihoon-dev/concert-reservation/internal/config"
	"github.com/jihoon-dev/concert-reservation/internal/handler"
	"github.com/jihoon-dev/concert-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration and login under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterPublic registers the unauthenticated browse endpoints.  Guests
// can inspect concerts, schedules and seat availability before logging
// in; reserving requires auth plus an active queue token.
func RegisterPublic(e *echo.Echo, con *handler.ConcertHandler) {
	e.GET("/v1/concerts", con.ListConcerts)
	e.GET("/v1/concerts/:id/schedules", con.ListSchedules)
	e.GET("/v1/schedules/:id/seats", con.AvailableSeats)
}

// RegisterProtected registers the authenticated surface: queue entry,
// reservations, payments and the point ledger.  The token-bucket
// limiter wraps the hot endpoints (queue polling and reservation
// creation) so abusive clients back off before reaching the database.
func RegisterProtected(e *echo.Echo, q *handler.QueueHandler, r *handler.ReservationHandler, pay *handler.PaymentHandler, pt *handler.PointHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	limited := g.Group("", middleware.NewTokenBucket(rlCfg, rdb))
	limited.POST("/queue/token", q.IssueToken)
	limited.GET("/queue/status", q.GetStatus)
	limited.POST("/reservations", r.Create)

	g.GET("/reservations", r.List)
	g.POST("/payments", pay.Process)
	g.GET("/payments/:id", pay.Get)
	g.GET("/points", pt.GetBalance)
	g.GET("/points/history", pt.History)
	g.POST("/points/charge", pt.Charge)
	g.POST("/points/use", pt.Use)
}
