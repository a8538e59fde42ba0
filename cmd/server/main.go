package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitos/kalshi_ledger/internal/config"
	"github.com/vitos/kalshi_ledger/internal/domain"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/csvsource"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/logger"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/storage"
	"github.com/vitos/kalshi_ledger/internal/infrastructure/tracing"
	"github.com/vitos/kalshi_ledger/internal/usecase"
	"github.com/vitos/kalshi_ledger/internal/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config file")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Tracing
	shutdownTracing, err := tracing.Init(cfg.Tracing.Enabled, os.Stderr)
	if err != nil {
		log.Error("Failed to init tracing, continuing without", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	// 4. Init Export Store (optional)
	var store domain.SnapshotRepository
	if cfg.Export.SQLitePath != "" {
		sqliteStore, err := storage.NewSQLiteStore(cfg.Export.SQLitePath)
		if err != nil {
			log.Fatal("Failed to init sqlite", zap.Error(err))
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	// 5. Init Service
	svc := usecase.NewPortfolioService(csvsource.NewReader(), cfg.PortfolioOptions(), log)

	// 6. Init Web Server
	server := web.NewServer(cfg.Server.Port, svc, store, cfg.Analysis.StartingCapital, log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 7. Wait for Shutdown
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error("Tracing shutdown failed", zap.Error(err))
	}
}
