package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockstreamer/src/config"
	"stockstreamer/src/logger"
	"stockstreamer/src/server"
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	// Lifecycle Management
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Setup Components
	store, err := setupDatabase(ctx, conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer store.Close()

	networkManager := setupNetwork(conf.MConfig)
	fetcher := setupFetcher(conf.MConfig, networkManager)

	poller, err := setupPoller(conf.MConfig, fetcher, store)
	if err != nil {
		appLogger.Critical("Failed to build polling manager: %v", err)
		store.Close()
		os.Exit(1)
	}

	dashboard := server.NewDashboardServer(conf.MConfig, store, logger.NewLogger(conf.MConfig, "Dashboard"))
	dashboard.Status = poller.Status
	poller.AddPublisher(dashboard)

	if redisPublisher := setupRedis(ctx, conf.MConfig, appLogger); redisPublisher != nil {
		defer redisPublisher.Close()
		poller.AddPublisher(redisPublisher)
	}

	// 5. Start Servers
	grpcServer := startServers(dashboard, poller, conf.MConfig, appLogger)

	// 6. Run the polling cycles until a signal arrives
	appLogger.Info("Polling %d symbols from %s", len(conf.DataSource.Symbols), fetcher.Name())
	poller.Run(ctx)

	// Wait for cleanup on exit
	appLogger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := dashboard.Stop(shutdownCtx); err != nil {
		appLogger.Warning("Dashboard shutdown: %v", err)
	}
	grpcServer.GracefulStop()
	appLogger.Info("Shutdown complete.")
}
