package commands

import (
	"context"
	"fmt"

	"rentpay/internal/domain/actor"
	"rentpay/internal/infra"
	"rentpay/internal/infra/gateway"
	"rentpay/internal/pkg/config"
	"rentpay/internal/pkg/errs"

	"github.com/google/uuid"
)

type PaymentType string

const (
	PaymentTypeBalance PaymentType = "balance"
	PaymentTypeDeposit PaymentType = "deposit"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeBalance || t == PaymentTypeDeposit
}

type CheckoutSessionResult struct {
	SessionURL  string
	SessionID   string
	AmountCents int64
}

type CheckoutCommands interface {
	// CreateSession prices a hosted checkout off the freshly recomputed
	// balance so the customer is never offered a stale amount.
	CreateSession(ctx context.Context, caller actor.Actor, bookingID uuid.UUID, paymentType PaymentType) (*CheckoutSessionResult, error)
}

type checkoutUseCaseImpl struct {
	bookingRepo BookingRepository
	ledger      LedgerCommands
	gw          gateway.Client
	gatewayCfg  config.GatewayConfig
}

func NewCheckoutUseCase(
	bookingRepo BookingRepository,
	ledger LedgerCommands,
	gw gateway.Client,
	gatewayCfg config.GatewayConfig,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		bookingRepo: bookingRepo,
		ledger:      ledger,
		gw:          gw,
		gatewayCfg:  gatewayCfg,
	}
}

func (c *checkoutUseCaseImpl) CreateSession(
	ctx context.Context,
	caller actor.Actor,
	bookingID uuid.UUID,
	paymentType PaymentType,
) (*CheckoutSessionResult, error) {
	if !paymentType.IsValid() {
		return nil, ErrValidation
	}

	b, err := c.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !caller.IsAdmin() && !b.IsOwnedBy(caller.ID) {
		return nil, ErrNotBookingOwner
	}

	reconciliation, err := c.ledger.Reconcile(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if reconciliation.BalanceCents == 0 {
		return nil, ErrBalanceAlreadyZero
	}

	amountCents := reconciliation.BalanceCents
	if paymentType == PaymentTypeDeposit {
		amountCents = b.DepositAmount().Cents()
		if amountCents == 0 {
			return nil, ErrValidation
		}
	}

	session, err := c.gw.CreateHostedCheckout(ctx, gateway.CheckoutSessionRequest{
		AmountCents: amountCents,
		Currency:    c.gatewayCfg.Currency,
		Reference:   bookingID.String(),
		Description: fmt.Sprintf("booking %s %s payment", bookingID, paymentType),
		SuccessURL:  c.gatewayCfg.SuccessURL,
		CancelURL:   c.gatewayCfg.CancelURL,
	})
	if err != nil {
		return nil, errs.Mark(err, ErrGatewayFailure)
	}

	return &CheckoutSessionResult{
		SessionURL:  session.URL,
		SessionID:   session.ID,
		AmountCents: amountCents,
	}, nil
}
