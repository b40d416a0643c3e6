package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the process environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/gamebox/reservation-server/internal/config"
	"github.com/gamebox/reservation-server/internal/database"
	"github.com/gamebox/reservation-server/internal/engine"
	"github.com/gamebox/reservation-server/internal/handler"
	"github.com/gamebox/reservation-server/internal/queue"
	"github.com/gamebox/reservation-server/internal/repository"
	"github.com/gamebox/reservation-server/internal/router"
)

func main() {
	// A missing .env is fine in production where variables come from the
	// environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter. Both degrade
	// to pass-through when the client is nil.
	rdb := config.NewRedisClient()

	policy := engine.NewCapacityPolicy(cfg.Capacity, cfg.CapacityDefault)

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	resRepo := repository.NewReservationRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	resHandler := handler.NewReservationHandler(resRepo, policy)
	shareHandler := handler.NewShareHandler(resRepo, policy)
	adminHandler := handler.NewAdminHandler(resRepo)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, shareHandler, cfg.JWTSecret, rdb)
	router.RegisterReservations(e, resHandler, cfg.JWTSecret, rdb)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	// The consumer tails reservation status events into logs/ and keeps
	// retrying if the broker is down, so it must not block startup.
	go func() {
		if err := queue.StartStatusConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
