package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/autoparts/auth"
	"github.com/diewo77/autoparts/internal/config"
	"github.com/diewo77/autoparts/internal/db"
	"github.com/diewo77/autoparts/internal/events"
	"github.com/diewo77/autoparts/internal/handlers"
	"github.com/diewo77/autoparts/internal/policy"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(os.Stdout, "[autoparts] ", log.LstdFlags|log.Lmicroseconds)

	auth.SetSecret(cfg.Auth.SessionSecret)

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	seedOpts := db.SeedOptions{AdminEmail: cfg.Auth.AdminEmail, AdminPassword: cfg.Auth.AdminPassword}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg.App.Migrations, cfg.Database); err != nil {
			logger.Fatalf("Migration failed: %v", err)
		}
		logger.Println("Migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn, seedOpts); err != nil {
			logger.Fatalf("Seeding failed: %v", err)
		}
		logger.Println("Seeding completed successfully")
		return
	}

	if err := db.Migrate(dbConn, cfg.App.Migrations, cfg.Database); err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn, seedOpts); err != nil {
			logger.Fatalf("Seeding failed: %v", err)
		}
	}

	auth.SetUserVerifier(handlers.UserExists(dbConn))

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.AMQPURL != "" {
		conn, amqpPub, err := events.Dial(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			logger.Fatalf("Failed to connect to broker: %v", err)
		}
		defer conn.Close()
		defer amqpPub.Close()
		publisher = amqpPub
		logger.Printf("Publishing events to exchange %q", cfg.Events.Exchange)
	}

	routerCfg := policy.NewRouterConfig(dbConn, cfg, publisher, logger)
	appHandler := NewApp(dbConn, routerCfg, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Printf("Server starting on port %s (dev=%v)", cfg.Server.Port, cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("Error during shutdown: %v", err)
	}
	logger.Println("Server stopped gracefully")
}
