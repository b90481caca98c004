//go:build wireinject
// +build wireinject

package di

import (
	"SimuTrade/pkg/config"
	"SimuTrade/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,

		// Market data
		ProvideCandleSource,
		ProvidePriceStream,

		// Archive backends
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideTickProcessor,

		// Engine
		ProvideFuser,
		ProvideLedger,
		ProvideAnalyzer,
		ProvidePriceCollector,
		ProvideDriver,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
