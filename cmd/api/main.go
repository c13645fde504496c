package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serata/internal/api"
	"serata/internal/cache"
	"serata/internal/config"
	"serata/internal/database"
	"serata/internal/feed"
	"serata/internal/handlers"
	"serata/internal/logger"
	"serata/internal/messaging"
	"serata/internal/repository"
	"serata/internal/search"
	"serata/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// NATS, Redis and Elasticsearch are optional: the API degrades to
	// database-only behavior when they are unreachable.
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Warn("NATS unavailable, feed events stay in-process", "error", err)
		natsClient = nil
	} else {
		defer natsClient.Close()
	}

	cacheClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, caching disabled", "error", err)
		cacheClient = nil
	} else {
		defer cacheClient.Close()
	}

	searchClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		log.Warn("Elasticsearch unavailable, search falls back to database", "error", err)
		searchClient = nil
	}

	repos := repository.NewRepositories(db)
	fd := feed.New(natsClient)
	services := service.NewServices(repos, fd, cacheClient, searchClient, cfg)
	h := handlers.New(services, fd)
	server := api.NewServer(cfg, db, h)

	go func() {
		log.Info("Starting API server", "port", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	log.Info("Server stopped")
}
