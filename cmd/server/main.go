package main // Entry point package

import (
	"context" // context for the schema bootstrap timeout
	"log"     // Logging library
	"time"

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/user-account-service/internal/config"   // Internal config loader
	"github.com/iliyamo/user-account-service/internal/database" // MySQL pool + schema
	"github.com/iliyamo/user-account-service/internal/handler"  // HTTP handlers
	"github.com/iliyamo/user-account-service/internal/mailer"   // SMTP delivery
	"github.com/iliyamo/user-account-service/internal/queue"    // email queue publisher/consumer
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/router" // Internal router setup
	"github.com/iliyamo/user-account-service/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("database: %v", err)
	}
	cancel()

	// Redis backs the per-route rate limiter; nil degrades to no limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	accounts := repository.NewAccountRepo(db)
	auth := service.NewAuthService(cfg, accounts, queue.Publisher{})

	// The consumer owns email delivery; requests only publish to the queue.
	go func() {
		if err := queue.StartEmailConsumer(mailer.New(cfg)); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, auth), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
