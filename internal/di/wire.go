//go:build wireinject
// +build wireinject

package di

import (
	"AlertSlope/pkg/config"
	"AlertSlope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Domain services
		ProvideSlopeParams,
		ProvideFitter,
		ProvideSlopeEstimator,
		ProvideExtractor,

		// Use cases
		ProvideAlertEnricher,
		ProvideKafkaAlertsHandler,

		// Transport
		ProvideKafkaConsumer,
		ProvideSlopesHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
