package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/chalets-du-lac/api/internal/config"
	"github.com/chalets-du-lac/api/internal/kvcache"
	"github.com/chalets-du-lac/api/internal/mailer"
	"github.com/chalets-du-lac/api/internal/router"
	"github.com/chalets-du-lac/api/internal/service"
	"github.com/chalets-du-lac/api/internal/store"
	"github.com/chalets-du-lac/api/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	s := store.New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		log.Fatalf("Unable to ensure schema: %v", err)
	}

	devices, err := kvcache.Open(cfg.DeviceCachePath)
	if err != nil {
		log.Fatalf("Unable to open device cache: %v", err)
	}

	mail := &mailer.SMTPMailer{
		Addr:     cfg.SMTPAddr,
		From:     cfg.MailFrom,
		To:       cfg.MailTo,
		MockMode: cfg.MailMockMode,
	}
	if !mail.Available() {
		log.Println("WARNING: mail sink not available, account closing will be refused")
	}

	closing := service.NewClosingService(s, mail)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, s, hub, closing, devices)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
