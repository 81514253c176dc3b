package components

import (
	"github.com/ed-robles/shop-template/internal/pkg/clock"
	"github.com/ed-robles/shop-template/internal/usecase/commands"
	"github.com/ed-robles/shop-template/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCartUseCase,
		commands.NewCheckoutUseCase,
		commands.NewWebhookUseCase,
		commands.NewAdminProductUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewProductQueries,
		queries.NewOrderQueries,
	),
)
