//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideKVStore,
		ProvideKafkaProducer,
		ProvideClickHouseClient,

		// Repositories
		ProvideWatchlistStore,
		ProvideAlertStore,
		ProvidePointHistory,
		ProvideSeriesProvider,
		ProvideHub,
		ProvideAlertPublisher,

		// Use cases
		ProvideSeriesService,
		ProvideDashboard,
		ProvideRefreshJob,
		ProvideScheduler,

		// Transport
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
