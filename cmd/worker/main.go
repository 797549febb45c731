// Worker runs the nightly subscription sweep and the special-offer sweep on
// their cron schedules.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"bazaar/backend/internal/config"
	"bazaar/backend/internal/db"
	productrepo "bazaar/backend/internal/product/repository"
	websiterepo "bazaar/backend/internal/website/repository"
	"bazaar/backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "bazaar-worker").Logger()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	w := worker.New(
		websiterepo.NewPostgresRepository(conn),
		productrepo.NewPostgresRepository(conn),
		cfg.SweepBatchSize,
		logger,
	)
	if err := w.Start(cfg.SubscriptionSweepSchedule, cfg.OfferSweepSchedule); err != nil {
		log.Fatalf("worker: %v", err)
	}
	logger.Info().
		Str("subscription_schedule", cfg.SubscriptionSweepSchedule).
		Str("offer_schedule", cfg.OfferSweepSchedule).
		Msg("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("worker shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		log.Fatalf("stop: %v", err)
	}
}
