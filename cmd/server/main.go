package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/jihoon-dev/concert-reservation/internal/admission"
	"github.com/jihoon-dev/concert-reservation/internal/cache"
	"github.com/jihoon-dev/concert-reservation/internal/config"
	"github.com/jihoon-dev/concert-reservation/internal/database"
	"github.com/jihoon-dev/concert-reservation/internal/handler"
	"github.com/jihoon-dev/concert-reservation/internal/lock"
	"github.com/jihoon-dev/concert-reservation/internal/queue"
	"github.com/jihoon-dev/concert-reservation/internal/repository"
	"github.com/jihoon-dev/concert-reservation/internal/router"
	"github.com/jihoon-dev/concert-reservation/internal/scheduler"
	"github.com/jihoon-dev/concert-reservation/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the distributed locks the whole admission and
	// reservation path depends on, so it is not optional here.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection required for distributed locks")
	}
	defer rdb.Close()

	locks := lock.NewRedisExecutor(rdb)
	seatCache := cache.NewSeatCache(rdb, cfg.SeatCacheTTL)

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewQueueTokenRepo(db)
	concertRepo := repository.NewConcertRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	pointRepo := repository.NewPointRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	gate := admission.NewService(tokenRepo, locks, cfg.ActiveTokenWindow, cfg.LockWait, cfg.LockLease)
	concertSvc := service.NewConcertService(concertRepo, seatRepo, seatCache)
	reservationSvc := service.NewReservationService(gate, concertRepo, reservationRepo, seatCache, locks, cfg.LockWait, cfg.LockLease, cfg.ReservationHold)
	paymentSvc := service.NewPaymentService(gate, reservationRepo, seatRepo, paymentRepo, seatCache, locks, cfg.LockWait, cfg.LockLease)
	pointSvc := service.NewPointService(pointRepo, locks, cfg.LockWait, cfg.LockLease)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher := queue.NewPublisher(cfg.AMQPURL)
	restorer := queue.NewRestorer(reservationRepo, seatCache, queue.NewRedisIdempotencyGuard(rdb))
	go queue.StartSeatRestoreConsumer(ctx, cfg.AMQPURL, restorer)
	go queue.StartDLQLogger(ctx, cfg.AMQPURL)
	go scheduler.NewExpirationScanner(reservationRepo, publisher, cfg.ScanInterval).Run(ctx)
	go scheduler.NewTokenPromoter(gate, cfg.MaxActiveTokens, cfg.PromoteInterval).Run(ctx)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo))
	router.RegisterPublic(e, handler.NewConcertHandler(concertSvc))
	router.RegisterProtected(e,
		handler.NewQueueHandler(gate),
		handler.NewReservationHandler(reservationSvc),
		handler.NewPaymentHandler(paymentSvc),
		handler.NewPointHandler(pointSvc),
		cfg.JWTSecret, rlCfg, rdb)

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Println(err)
	}
}
