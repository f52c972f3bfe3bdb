package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optionsjournal/config"
	"optionsjournal/internal/adapters/jsonstore"
	"optionsjournal/internal/adapters/logger"
	"optionsjournal/internal/adapters/sqlite"
	"optionsjournal/internal/api"
	"optionsjournal/internal/app"
	"optionsjournal/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Storage Adapter)
	var repo ports.TradeRepository
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		sqliteRepo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize sqlite repository: %v", err)
		}
		defer func() {
			if err := sqliteRepo.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing sqlite repository")
			}
		}()
		repo = sqliteRepo
	default:
		repo, err = jsonstore.NewRepository(jsonstore.Config{Path: cfg.TradesFile, Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize JSON trade store: %v", err)
		}
	}
	appLogger.Info(context.Background(), "Trade repository initialized", map[string]interface{}{"backend": cfg.StoreBackend})

	// 4. Initialize Application Service
	journal, err := app.NewJournalService(appLogger, repo, cfg.DefaultLossModifierPercent)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize journal service: %v", err)
	}

	// 5. HTTP Server
	handler := api.NewHandler(journal, appLogger, cfg.UploadDir)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.SetupRoutes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		appLogger.Info(context.Background(), "Journal server listening", map[string]interface{}{"addr": cfg.ListenAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(context.Background(), err, "HTTP server exited with error")
		}
	}()

	<-shutdown
	appLogger.Info(context.Background(), "Shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error(ctx, err, "Graceful shutdown failed")
	}
	appLogger.Info(context.Background(), "Server stopped")
}
