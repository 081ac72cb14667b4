package main

import (
	"context"

	"stockstreamer/src/data_source/iex"
	"stockstreamer/src/interfaces"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"
	"stockstreamer/src/network"
	"stockstreamer/src/poller"
	"stockstreamer/src/publisher"
	"stockstreamer/src/retry"
	"stockstreamer/src/storage"
	"stockstreamer/src/utils"
)

// -----------------------------------------------------------------------------

// setupDatabase opens the configured store and creates the tables
func setupDatabase(ctx context.Context, config *models.MConfig, appLogger *logger.Logger) (*storage.RelationalStockStore, error) {
	storeLogger := logger.NewLogger(config, "Store")

	store, err := storage.NewStore(ctx, config, storeLogger)
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		store.Close()
		appLogger.Critical("Failed to migrate db: %v", err)
		return nil, err
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(config, "NetworkManager")
	return network.NewAsyncNetworkManager(config, networkLogger)
}

// -----------------------------------------------------------------------------

func setupFetcher(config *models.MConfig, networkManager interfaces.INetworkManager) interfaces.IStockFetcher {
	sourceLogger := logger.NewLogger(config, "IEXSource")
	policy := retry.NewPolicy(config.Retry, sourceLogger.Named("Retry"))
	return iex.NewIEXSource(config, networkManager, policy, sourceLogger)
}

// -----------------------------------------------------------------------------

func setupPoller(config *models.MConfig, fetcher interfaces.IStockFetcher, store interfaces.IStockStore) (*poller.PollingManager, error) {
	pollerLogger := logger.NewLogger(config, "PollingManager")
	gate := utils.NewMarketScheduler(config.DataSource.Symbols, logger.NewLogger(config, "MarketScheduler"))
	return poller.NewPollingManager(config, fetcher, store, gate, pollerLogger)
}

// -----------------------------------------------------------------------------

// setupRedis returns nil when redis is disabled or unreachable; polling
// continues without it.
func setupRedis(ctx context.Context, config *models.MConfig, appLogger *logger.Logger) *publisher.RedisPublisher {
	if !config.Redis.Enabled {
		return nil
	}

	p, err := publisher.NewRedisPublisher(ctx, config.Redis, logger.NewLogger(config, "Redis"))
	if err != nil {
		appLogger.Warning("Redis publisher disabled: %v", err)
		return nil
	}
	appLogger.Info("Publishing rounds to redis at %s", config.Redis.Addr)
	return p
}
