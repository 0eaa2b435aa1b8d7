package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"complyhr/internal/engine/billing"
	"complyhr/internal/engine/contracts"
	"complyhr/internal/engine/rtw"
	"complyhr/internal/pkg/logger"
	"complyhr/internal/platform/audit"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/database"
	"complyhr/internal/platform/storage"
	"complyhr/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Run every job once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	auditLog := audit.NewLogger(db)
	rtwSvc := rtw.NewService(db, auditLog)
	contractSvc := contracts.NewService(db, auditLog, storage.NewBucket(cfg.Storage, cfg.Domains.APIURL), contracts.Config{AppURL: cfg.Domains.AppURL})
	billingSvc := billing.NewService(db, nil, cfg.Billing, cfg.Domains.AppURL)

	runner := workers.NewRunner(
		workers.Job{Name: "rtw_sweep", Run: workers.Counted(rtwSvc.Sweep)},
		workers.Job{Name: "contract_rollups", Run: workers.Counted(contractSvc.RefreshRollups)},
		workers.Job{Name: "trial_expiry", Run: billingSvc.ExpireTrials},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		runner.RunOnce(ctx)
		return
	}

	log.Info().Dur("interval", cfg.Worker.SweepInterval).Msg("worker started")
	runner.Start(ctx, cfg.Worker.SweepInterval)
	log.Info().Msg("worker stopped")
}
