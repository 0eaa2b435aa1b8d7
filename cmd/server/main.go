package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"complyhr/internal/api"
	"complyhr/internal/api/middleware"
	"complyhr/internal/engine/billing"
	"complyhr/internal/pkg/logger"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/storage"
	"complyhr/migrations"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	if err := cfg.Billing.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid billing config")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	applied, err := migrations.Apply(context.Background(), db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	if len(applied) > 0 {
		log.Info().Strs("versions", applied).Msg("applied migrations")
	}

	bucket := storage.NewBucket(cfg.Storage, cfg.Domains.APIURL)
	provider := billing.NewStripeProvider(cfg.Billing.StripeSecretKey)

	limiter := middleware.NewRateLimiter()
	limiter.TrustProxy = cfg.Server.TrustProxy
	defer limiter.Stop()

	router := api.NewRouter(api.Wire(db, cfg, bucket, provider, limiter))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
