package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"bazaar/backend/internal/auth"
	commentrepo "bazaar/backend/internal/comment/repository"
	"bazaar/backend/internal/config"
	"bazaar/backend/internal/db"
	productrepo "bazaar/backend/internal/product/repository"
	"bazaar/backend/internal/security"
	"bazaar/backend/internal/server"
	sessionrepo "bazaar/backend/internal/session/repository"
	ticketrepo "bazaar/backend/internal/ticket/repository"
	userrepo "bazaar/backend/internal/user/repository"
	"bazaar/backend/internal/verification"
	verificationrepo "bazaar/backend/internal/verification/repository"
	websiterepo "bazaar/backend/internal/website/repository"
	websiteservice "bazaar/backend/internal/website/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "bazaar-api").Logger()
	if cfg.Env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	websites := websiterepo.NewPostgresRepository(conn)
	products := productrepo.NewPostgresRepository(conn)
	tickets := ticketrepo.NewPostgresRepository(conn)
	comments := commentrepo.NewPostgresRepository(conn)
	verifications := verificationrepo.NewPostgresRepository(conn)

	tokens := security.NewTokenProvider(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	mailer := &verification.LogMailer{Logger: logger}
	codes := verification.NewService(verifications, mailer)
	authService := auth.NewService(users, sessions, tokens, hasher, cfg.SessionMaxAge())
	websiteService := websiteservice.NewService(websites, users, authService, codes)

	srv := server.New(cfg.HTTPAddr, authService, websiteService, products, tickets, comments, codes, websites, logger)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
