package commands

import (
	"context"
	"log/slog"

	"rentpay/internal/domain/actor"
	"rentpay/internal/domain/booking"
	"rentpay/internal/domain/payment"
	"rentpay/internal/infra"
	"rentpay/internal/infra/gateway"
	"rentpay/internal/pkg/config"
	"rentpay/internal/pkg/errs"

	"github.com/google/uuid"
)

type ReserveOrReuseResult struct {
	AuthorizationRef string
	ClientSecret     string
	AmountCents      int64
	Currency         string
	Reused           bool
}

type PaymentCommands interface {
	// ReserveOrReuse creates a gateway authorization for an on-demand
	// charge, or hands back an existing open one for the same
	// (booking, amount, purpose) tuple.
	ReserveOrReuse(ctx context.Context, caller actor.Actor, bookingID uuid.UUID, amountCents int64, purpose payment.Purpose) (*ReserveOrReuseResult, error)
	// ConfirmAuthorization marks the payment record behind a gateway
	// reference completed and reconciles the booking. Driven by the
	// gateway's confirmation callback via the internal endpoint.
	ConfirmAuthorization(ctx context.Context, gatewayAuthorizationRef string) (*ReconcileResult, error)
}

type paymentUseCaseImpl struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	ledgerRepo  LedgerRepository
	ledger      LedgerCommands
	gw          gateway.Client
	dispatcher  Dispatcher
	gatewayCfg  config.GatewayConfig
}

func NewPaymentUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	ledgerRepo LedgerRepository,
	ledger LedgerCommands,
	gw gateway.Client,
	dispatcher Dispatcher,
	gatewayCfg config.GatewayConfig,
) PaymentCommands {
	return &paymentUseCaseImpl{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
		ledger:      ledger,
		gw:          gw,
		dispatcher:  dispatcher,
		gatewayCfg:  gatewayCfg,
	}
}

func (p *paymentUseCaseImpl) ReserveOrReuse(
	ctx context.Context,
	caller actor.Actor,
	bookingID uuid.UUID,
	amountCents int64,
	purpose payment.Purpose,
) (*ReserveOrReuseResult, error) {
	if amountCents <= 0 || !purpose.IsValid() {
		return nil, ErrValidation
	}

	b, err := p.findOwnedBooking(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}

	// Authorize first, look for an existing record second. The lookup must
	// never delay the customer-facing result; an unconfirmed extra
	// authorization costs nothing and expires on its own.
	created, err := p.createAuthorization(ctx, b, amountCents, purpose)
	if err != nil {
		return nil, err
	}

	existing, err := p.paymentRepo.FindNewestOpen(ctx, bookingID, amountCents, purpose)
	if err == nil {
		if reused := p.tryReuse(ctx, existing); reused != nil {
			return reused, nil
		}
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	rec, err := payment.NewRecord(bookingID, purpose, amountCents)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := rec.BindAuthorization(created.ID); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := p.paymentRepo.Create(ctx, rec); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			// Lost the insert race to a concurrent identical request.
			// The winner's record is the one to hand back.
			return p.reuseRaceWinner(ctx, bookingID, amountCents, purpose)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return &ReserveOrReuseResult{
		AuthorizationRef: created.ID,
		ClientSecret:     created.ClientSecret,
		AmountCents:      amountCents,
		Currency:         p.gatewayCfg.Currency,
		Reused:           false,
	}, nil
}

func (p *paymentUseCaseImpl) ConfirmAuthorization(ctx context.Context, gatewayAuthorizationRef string) (*ReconcileResult, error) {
	if gatewayAuthorizationRef == "" {
		return nil, ErrValidation
	}

	rec, err := p.paymentRepo.FindByGatewayRef(ctx, gatewayAuthorizationRef)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := rec.MarkCompleted(); err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := p.paymentRepo.Save(ctx, rec); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	result, err := p.ledger.Reconcile(ctx, rec.BookingID())
	if err != nil {
		return nil, err
	}

	p.appendLedgerEntry(ctx, rec)
	if err := p.dispatcher.PaymentRecorded(ctx, rec.BookingID(), rec.AmountCents(), "gateway"); err != nil {
		slog.Warn("failed to publish payment recorded event", "booking_id", rec.BookingID(), "error", err)
	}

	return result, nil
}

func (p *paymentUseCaseImpl) findOwnedBooking(ctx context.Context, caller actor.Actor, bookingID uuid.UUID) (*booking.Booking, error) {
	b, err := p.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !caller.IsAdmin() && !b.IsOwnedBy(caller.ID) {
		return nil, ErrNotBookingOwner
	}
	return b, nil
}

func (p *paymentUseCaseImpl) createAuthorization(
	ctx context.Context,
	b *booking.Booking,
	amountCents int64,
	purpose payment.Purpose,
) (*gateway.AuthorizationResponse, error) {
	captureMode := gateway.CaptureModeAutomatic
	if !purpose.CountsTowardBalance() {
		captureMode = gateway.CaptureModeManual
	}

	var methodRef string
	if ref := b.PaymentMethodRef(); ref != nil {
		methodRef = *ref
	}

	resp, err := p.gw.CreateAuthorization(ctx, gateway.AuthorizationRequest{
		AmountCents:      amountCents,
		Currency:         p.gatewayCfg.Currency,
		PaymentMethodRef: methodRef,
		CaptureMode:      captureMode,
		CustomerPresent:  true,
	}, "")
	if err != nil {
		if gwErr, ok := gateway.IsGatewayError(err); ok && gwErr.IsAuthenticationRequired() {
			return nil, &AuthenticationRequiredError{ClientSecret: gwErr.ClientSecret}
		}
		return nil, errs.Mark(err, ErrGatewayFailure)
	}
	return resp, nil
}

// tryReuse hands back an existing open record when the gateway still knows
// its authorization. A stale or unreachable one falls back to nil and the
// caller keeps the fresh authorization instead.
func (p *paymentUseCaseImpl) tryReuse(ctx context.Context, existing *payment.Record) *ReserveOrReuseResult {
	retrieved, err := p.gw.RetrieveAuthorization(ctx, existing.GatewayAuthorizationRef())
	if err != nil {
		slog.Warn("failed to retrieve existing authorization, falling back to new one",
			"booking_id", existing.BookingID(), "authorization_ref", existing.GatewayAuthorizationRef(), "error", err)
		return nil
	}
	return &ReserveOrReuseResult{
		AuthorizationRef: retrieved.ID,
		ClientSecret:     retrieved.ClientSecret,
		AmountCents:      existing.AmountCents(),
		Currency:         p.gatewayCfg.Currency,
		Reused:           true,
	}
}

func (p *paymentUseCaseImpl) reuseRaceWinner(
	ctx context.Context,
	bookingID uuid.UUID,
	amountCents int64,
	purpose payment.Purpose,
) (*ReserveOrReuseResult, error) {
	winner, err := p.paymentRepo.FindNewestOpen(ctx, bookingID, amountCents, purpose)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	result := p.tryReuse(ctx, winner)
	if result == nil {
		return nil, errs.Mark(errs.New("race winner authorization not retrievable"), ErrGatewayFailure)
	}
	return result, nil
}

func (p *paymentUseCaseImpl) appendLedgerEntry(ctx context.Context, rec *payment.Record) {
	entry, err := payment.NewLedgerEntry(
		rec.BookingID(),
		payment.EntryGatewayPayment,
		rec.AmountCents(),
		rec.GatewayAuthorizationRef(),
		uuid.Nil,
	)
	if err == nil {
		err = p.ledgerRepo.Append(ctx, entry)
	}
	if err != nil {
		// Audit trail only. The authorization already succeeded and must
		// not be rolled back over a missing ledger line.
		slog.Warn("failed to append ledger entry", "booking_id", rec.BookingID(), "error", err)
	}
}
