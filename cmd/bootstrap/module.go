package bootstrap

import (
	"github.com/ed-robles/shop-template/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	PaymentModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
