package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serata/internal/config"
	"serata/internal/database"
	"serata/internal/feed"
	"serata/internal/logger"
	"serata/internal/messaging"
	"serata/internal/metrics"
	"serata/internal/repository"
	"serata/internal/service"
)

// The reaper sweeps time-based expiry that the API leaves to the
// background: pending transactions past their TTL become failed, and resale
// listings past the window become expired.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Warn("NATS unavailable, reaper runs without publishing", "error", err)
		natsClient = nil
	} else {
		defer natsClient.Close()
	}

	repos := repository.NewRepositories(db)
	fd := feed.New(natsClient)
	services := service.NewServices(repos, fd, nil, nil, cfg)

	log.Info("Starting reaper",
		"interval", cfg.Reaper.Interval,
		"pending_ttl", cfg.Reaper.PendingTTL,
		"resale_window", cfg.Reaper.ResaleWindow)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Reaper.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Reaper stopped")
			return
		case <-ticker.C:
			sweep(ctx, services, cfg, log)
		}
	}
}

func sweep(ctx context.Context, services *service.Services, cfg *config.Config, log *slog.Logger) {
	sweepCtx, cancel := context.WithTimeout(ctx, cfg.Reaper.Interval)
	defer cancel()

	failed, err := services.Transactions.FailStalePending(sweepCtx, cfg.Reaper.PendingTTL)
	if err != nil {
		log.Error("Stale transaction sweep failed", "error", err)
	} else if failed > 0 {
		metrics.ReaperSwept("transactions", failed)
		log.Info("Expired stale pending transactions", "count", failed)
	}

	expired, err := services.Mutations.ExpireResales(sweepCtx, cfg.Reaper.ResaleWindow)
	if err != nil {
		log.Error("Resale expiry sweep failed", "error", err)
	} else if expired > 0 {
		metrics.ReaperSwept("resales", expired)
		log.Info("Expired overdue resale listings", "count", expired)
	}
}
