//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"readtrack/internal"
	"readtrack/internal/controllers"
	"readtrack/internal/history"
	"readtrack/internal/providers"
	"readtrack/internal/services"
	"readtrack/internal/storage"
	"readtrack/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		history.NewDetector,
		history.NewValidator,
		history.NewMigrator,
		history.NewStore,
		services.NewHistoryService,

		storage.NewZstdCompressor,
		storage.NewFileManager,
		storage.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
