package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vertextoedge/node-disk-monitor/internal/adapter/sqlite"
	"github.com/vertextoedge/node-disk-monitor/internal/config"
	"github.com/vertextoedge/node-disk-monitor/internal/dircollection"
	dfs "github.com/vertextoedge/node-disk-monitor/internal/fs"
	"github.com/vertextoedge/node-disk-monitor/internal/logger"
	"github.com/vertextoedge/node-disk-monitor/internal/metrics"
	"github.com/vertextoedge/node-disk-monitor/internal/port"
	"github.com/vertextoedge/node-disk-monitor/internal/service/monitor"
	"github.com/vertextoedge/node-disk-monitor/internal/service/server"
	"github.com/vertextoedge/node-disk-monitor/internal/validator"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	zapLogger.Info("starting node-disk-monitor",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	diskValidator, err := validator.New(cfg.Monitor.DiskValidator)
	if err != nil {
		zapLogger.Fatal("failed to create disk validator", zap.Error(err))
	}
	zapLogger.Info("disk validator loaded", zap.String("validator", cfg.Monitor.DiskValidator))

	collection := dircollection.New(&dircollection.Config{
		Dirs:                              cfg.Monitor.Dirs,
		UtilizationCutoffHighPct:          cfg.Monitor.MaxDiskUtilizationPct,
		UtilizationCutoffLowPct:           cfg.Monitor.LowDiskUtilizationPct,
		FreeSpaceCutoffLowMB:              cfg.Monitor.MinFreeSpaceMB,
		FreeSpaceCutoffHighMB:             cfg.Monitor.MinFreeSpaceHighMB,
		UtilizationThresholdEnabled:       cfg.Monitor.UtilizationThresholdEnabled,
		FreeSpaceThresholdEnabled:         cfg.Monitor.FreeSpaceThresholdEnabled,
		SubAccessibilityValidationEnabled: cfg.Monitor.SubAccessibilityValidationEnabled,
	}, diskValidator, dfs.Statter{}, zapLogger)

	// Open transition history store if configured
	var history port.HistoryRepository
	var store *sqlite.Store
	if cfg.Database.Path != "" {
		store, err = sqlite.Open(cfg.Database.Path)
		if err != nil {
			zapLogger.Fatal("failed to open history database",
				zap.Error(err),
				zap.String("path", cfg.Database.Path))
		}
		defer store.Close()
		history = store
	}

	registry := prometheus.NewRegistry()
	if err := metrics.RegisterCollectionGauges(registry, collection); err != nil {
		zapLogger.Fatal("failed to register collection metrics", zap.Error(err))
	}
	checkMetrics, err := metrics.New(registry)
	if err != nil {
		zapLogger.Fatal("failed to register check metrics", zap.Error(err))
	}

	monitorCfg := &monitor.Config{
		CheckInterval:  cfg.Monitor.GetCheckInterval(),
		DirPermissions: cfg.Monitor.GetDirPermissions(),
	}
	monitorService := monitor.New(monitorCfg, collection, history, checkMetrics, zapLogger)

	serverCfg := &server.Config{
		BindAddr:     cfg.HTTP.BindAddr,
		ReadTimeout:  cfg.HTTP.GetReadTimeout(),
		WriteTimeout: cfg.HTTP.GetWriteTimeout(),
		IdleTimeout:  cfg.HTTP.GetIdleTimeout(),
	}
	httpServer := server.New(serverCfg, collection, history, registry, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := httpServer.Start(); err != nil {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := monitorService.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("monitor service stopped with error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	zapLogger.Info("node-disk-monitor started successfully",
		zap.String("http_addr", cfg.HTTP.BindAddr),
		zap.Strings("dirs", cfg.Monitor.Dirs),
	)
	<-sigChan

	zapLogger.Info("shutdown signal received, stopping services...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	monitorService.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("failed to stop HTTP server gracefully", zap.Error(err))
	}

	zapLogger.Info("node-disk-monitor stopped successfully")
}
