package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macro-observer/src/cache"
	"macro-observer/src/config"
	"macro-observer/src/data_source/fred"
	"macro-observer/src/engine"
	"macro-observer/src/interfaces"
	"macro-observer/src/logger"
	"macro-observer/src/models"
	"macro-observer/src/network"
	"macro-observer/src/server"
	"macro-observer/src/storage"
	"macro-observer/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file. A missing API key fails here, before any
	// component starts.
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg, cfg.Name)

	// 2. Cache store
	var store interfaces.ICacheStore = storage.NewSQLiteCacheStore(cfg.MConfig, appLogger)
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to init cache store: %v", err)
	}
	defer store.Close()

	// 3. Fetch path: network -> provider -> cache -> engine
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(cfg.MConfig, appLogger)
	var source interfaces.ISeriesSource = fred.NewFREDSource(cfg.MConfig, networkManager)
	fetchCache := cache.NewFetchCache(cfg.MConfig, source, store, appLogger)
	eng := engine.NewEngine(cfg.MConfig, fetchCache, appLogger)

	// 4. Server
	srv := server.NewDashboardServer(cfg, appLogger, eng)
	srv.ConfigPath = *configPath

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Refresh used by the admin endpoints: run a cycle, publish, broadcast.
	srv.Refresh = func() (*models.MLatestData, error) {
		snapshot, err := eng.Run(ctx, "UPDATE")
		if err != nil {
			return nil, err
		}
		srv.Broadcast(snapshot)
		return snapshot, nil
	}

	// 5. Initial cycle. Without the anchor series there is no table to
	// serve, so a failure here is fatal.
	appLogger.Info("Running initial cycle...")
	initial, err := eng.Run(ctx, "INITIAL")
	if err != nil {
		appLogger.Critical("Initial cycle failed: %v", err)
	}
	srv.UpdateAllDatas(initial)
	appLogger.Info("Initialization complete.")

	// 6. Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. Refresh loop. The scheduler skips polls on days the provider
	// cannot have published anything new.
	scheduler := utils.NewReleaseScheduler(appLogger)
	interval := time.Duration(cfg.Data.UpdateIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastRefresh := time.Now()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Starting refresh loop (every %s)...", interval)

	for {
		select {
		case now := <-ticker.C:
			if !scheduler.ShouldRefresh(now, lastRefresh) {
				appLogger.Debug("Skipping refresh, no release expected today")
				continue
			}

			snapshot, err := eng.Run(ctx, "UPDATE")
			if err != nil {
				appLogger.Error("Refresh cycle failed: %v", err)
				continue
			}
			lastRefresh = now
			srv.Broadcast(snapshot)

		case <-quit:
			appLogger.Info("Shutting down...")
			cancel()
			if err := srv.Stop(); err != nil {
				appLogger.Error("Server stop failed: %v", err)
			}
			return
		}
	}
}
