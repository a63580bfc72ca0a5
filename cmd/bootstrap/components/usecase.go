package components

import (
	"rentpay/internal/pkg/clock"
	"rentpay/internal/usecase/commands"
	"rentpay/internal/usecase/queries"

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
		commands.NewLedgerUseCase,
		commands.NewPaymentUseCase,
		commands.NewHoldUseCase,
		commands.NewCheckoutUseCase,
		commands.NewManualPaymentUseCase,
		commands.NewBookingUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewManualPaymentQueries,
	),
)
