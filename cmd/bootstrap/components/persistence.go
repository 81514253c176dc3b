package components

import (
	"github.com/ed-robles/shop-template/internal/infra/readstore"
	"github.com/ed-robles/shop-template/internal/infra/repository"
	"github.com/ed-robles/shop-template/internal/infra/uow"
	"github.com/ed-robles/shop-template/internal/usecase/queries"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// The webhook ledger is also injected standalone: claims and
		// acknowledgements run outside the dispatch transaction.
		fx.Annotate(
			repository.NewWebhookEventRepository,
			fx.As(new(shared.WebhookEventRepository)),
		),
		fx.Annotate(
			readstore.NewProductReadStore,
			fx.As(new(queries.ProductViewRepo)),
		),
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderViewRepo)),
		),
	),
)
