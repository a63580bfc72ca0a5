package commands

import (
	"context"
	"fmt"
	"log/slog"

	"rentpay/internal/domain/actor"
	"rentpay/internal/domain/payment"
	"rentpay/internal/infra"
	"rentpay/internal/infra/gateway"
	"rentpay/internal/pkg/config"
	"rentpay/internal/pkg/errs"

	"github.com/google/uuid"
)

type HoldResult struct {
	AuthorizationRef string
	AmountCents      int64
	AlreadyHeld      bool
}

type VerifyCardResult struct {
	AuthorizationRef string
	AmountCents      int64
}

type HoldCommands interface {
	// PlaceSecurityHold authorizes (never captures) the security hold for
	// a booking. Safe under at-least-once delivery: a booking that
	// already carries a hold reference short-circuits without touching
	// the gateway.
	PlaceSecurityHold(ctx context.Context, bookingID uuid.UUID) (*HoldResult, error)
	// VerifyCard authorizes a small hold against a new payment method,
	// voids it immediately, and attaches the verified method to the
	// booking.
	VerifyCard(ctx context.Context, caller actor.Actor, bookingID uuid.UUID, paymentMethodRef string) (*VerifyCardResult, error)
}

type holdUseCaseImpl struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	ledgerRepo  LedgerRepository
	gw          gateway.Client
	dispatcher  Dispatcher
	holdCfg     config.HoldConfig
	gatewayCfg  config.GatewayConfig
}

func NewHoldUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	ledgerRepo LedgerRepository,
	gw gateway.Client,
	dispatcher Dispatcher,
	holdCfg config.HoldConfig,
	gatewayCfg config.GatewayConfig,
) HoldCommands {
	return &holdUseCaseImpl{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
		gw:          gw,
		dispatcher:  dispatcher,
		holdCfg:     holdCfg,
		gatewayCfg:  gatewayCfg,
	}
}

func (h *holdUseCaseImpl) PlaceSecurityHold(ctx context.Context, bookingID uuid.UUID) (*HoldResult, error) {
	b, err := h.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Primary defense against redelivered jobs: an existing reference
	// means the hold is done, no gateway call at all.
	if b.SecurityHoldPlaced() {
		return &HoldResult{
			AuthorizationRef: *b.HoldAuthorizationRef(),
			AmountCents:      h.holdAmountCents(b.HoldAmount().Cents()),
			AlreadyHeld:      true,
		}, nil
	}

	if !b.HasPaymentMethod() {
		return nil, ErrNoPaymentMethod
	}

	amountCents := h.holdAmountCents(b.HoldAmount().Cents())

	// The derived key makes a gateway-level retry of this exact call
	// unable to double-authorize, even across job redeliveries.
	resp, err := h.gw.CreateAuthorization(ctx, gateway.AuthorizationRequest{
		AmountCents:      amountCents,
		Currency:         h.gatewayCfg.Currency,
		PaymentMethodRef: *b.PaymentMethodRef(),
		CaptureMode:      gateway.CaptureModeManual,
		CustomerPresent:  false,
		Description:      fmt.Sprintf("security hold for booking %s", b.ID()),
	}, b.SecurityHoldIdempotencyKey())
	if err != nil {
		if gwErr, ok := gateway.IsGatewayError(err); ok && gwErr.IsAuthenticationRequired() {
			return nil, &AuthenticationRequiredError{ClientSecret: gwErr.ClientSecret}
		}
		return nil, errs.Mark(err, ErrGatewayFailure)
	}

	// An authorization hold is a finished authorization step; the record
	// completes even though no funds move.
	rec, err := payment.NewRecord(b.ID(), payment.PurposeSecurityHold, amountCents)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := rec.BindAuthorization(resp.ID); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := rec.MarkCompleted(); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := h.paymentRepo.Create(ctx, rec); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	ref, err := b.RecordHoldPlaced(resp.ID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := h.bookingRepo.Save(ctx, b); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	h.appendLedgerEntry(ctx, b.ID(), payment.EntryHoldAuthorized, amountCents, ref)
	if err := h.dispatcher.HoldPlaced(ctx, b.ID(), ref, amountCents); err != nil {
		slog.Warn("failed to publish hold placed event", "booking_id", b.ID(), "error", err)
	}

	return &HoldResult{
		AuthorizationRef: ref,
		AmountCents:      amountCents,
		AlreadyHeld:      false,
	}, nil
}

func (h *holdUseCaseImpl) VerifyCard(
	ctx context.Context,
	caller actor.Actor,
	bookingID uuid.UUID,
	paymentMethodRef string,
) (*VerifyCardResult, error) {
	if paymentMethodRef == "" {
		return nil, ErrValidation
	}

	b, err := h.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !caller.IsAdmin() && !b.IsOwnedBy(caller.ID) {
		return nil, ErrNotBookingOwner
	}

	amountCents := h.holdCfg.VerifyAmountCents

	resp, err := h.gw.CreateAuthorization(ctx, gateway.AuthorizationRequest{
		AmountCents:      amountCents,
		Currency:         h.gatewayCfg.Currency,
		PaymentMethodRef: paymentMethodRef,
		CaptureMode:      gateway.CaptureModeManual,
		CustomerPresent:  true,
		Description:      fmt.Sprintf("card verification for booking %s", b.ID()),
	}, fmt.Sprintf("%s:verify_card", b.ID()))
	if err != nil {
		if gwErr, ok := gateway.IsGatewayError(err); ok && gwErr.IsAuthenticationRequired() {
			return nil, &AuthenticationRequiredError{ClientSecret: gwErr.ClientSecret}
		}
		return nil, errs.Mark(err, ErrGatewayFailure)
	}

	// Release the verification hold right away; it only proved the card
	// is live. A failed void just leaves it to expire.
	if _, err := h.gw.CaptureOrVoid(ctx, resp.ID, false, gateway.CaptureOrVoidRequest{}); err != nil {
		slog.Warn("failed to void verification hold", "booking_id", b.ID(), "authorization_ref", resp.ID, "error", err)
	}

	if err := b.AttachPaymentMethod(paymentMethodRef); err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := b.MarkCardVerified(); err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := h.bookingRepo.Save(ctx, b); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	rec, err := payment.NewRecord(b.ID(), payment.PurposeVerifyCard, amountCents)
	if err == nil {
		_ = rec.BindAuthorization(resp.ID)
		_ = rec.MarkCompleted()
		err = h.paymentRepo.Create(ctx, rec)
	}
	if err != nil {
		slog.Warn("failed to persist verification payment record", "booking_id", b.ID(), "error", err)
	}

	h.appendLedgerEntry(ctx, b.ID(), payment.EntryAdjustment, amountCents, resp.ID)

	return &VerifyCardResult{
		AuthorizationRef: resp.ID,
		AmountCents:      amountCents,
	}, nil
}

func (h *holdUseCaseImpl) holdAmountCents(bookingCents int64) int64 {
	if bookingCents > 0 {
		return bookingCents
	}
	return h.holdCfg.SecurityAmountCents
}

func (h *holdUseCaseImpl) appendLedgerEntry(
	ctx context.Context,
	bookingID uuid.UUID,
	entryType payment.LedgerEntryType,
	amountCents int64,
	sourceRef string,
) {
	entry, err := payment.NewLedgerEntry(bookingID, entryType, amountCents, sourceRef, uuid.Nil)
	if err == nil {
		err = h.ledgerRepo.Append(ctx, entry)
	}
	if err != nil {
		slog.Warn("failed to append ledger entry", "booking_id", bookingID, "error", err)
	}
}
