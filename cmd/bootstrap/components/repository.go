package components

import (
	"rentpay/internal/infra/readstore"
	repo_impl "rentpay/internal/infra/repository"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		repo_impl.NewBookingRepository,
		repo_impl.NewPaymentRepository,
		repo_impl.NewManualPaymentRepository,
		repo_impl.NewLedgerRepository,
		repo_impl.NewScheduledJobRepository,
		readstore.NewBookingReadStore,
		readstore.NewManualPaymentReadStore,
	),
)
