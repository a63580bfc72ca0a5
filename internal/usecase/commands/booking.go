package commands

import (
	"context"
	"log/slog"
	"time"

	"rentpay/internal/domain/booking"
	"rentpay/internal/domain/schedule"
	"rentpay/internal/infra"
	"rentpay/internal/pkg/config"
	"rentpay/internal/pkg/errs"

	"github.com/google/uuid"
)

type RegisterBookingInput struct {
	CustomerID         uuid.UUID
	StartAt            time.Time
	EndAt              time.Time
	TotalAmountCents   int64
	DepositAmountCents int64
	// HoldAmountCents overrides the default security-hold amount when
	// positive.
	HoldAmountCents int64
}

type RegisterBookingResult struct {
	BookingID     uuid.UUID
	Status        booking.Status
	BillingStatus booking.BillingStatus
	BalanceCents  int64
	HoldRunAtUTC  time.Time
}

type BookingCommands interface {
	// Register persists a new booking and enqueues its security-hold job
	// to fire a fixed lead time before the rental starts.
	Register(ctx context.Context, input RegisterBookingInput) (*RegisterBookingResult, error)
}

type bookingUseCaseImpl struct {
	bookingRepo BookingRepository
	jobRepo     ScheduledJobRepository
	dispatcher  Dispatcher
	holdCfg     config.HoldConfig
}

func NewBookingUseCase(
	bookingRepo BookingRepository,
	jobRepo ScheduledJobRepository,
	dispatcher Dispatcher,
	holdCfg config.HoldConfig,
) BookingCommands {
	return &bookingUseCaseImpl{
		bookingRepo: bookingRepo,
		jobRepo:     jobRepo,
		dispatcher:  dispatcher,
		holdCfg:     holdCfg,
	}
}

func (u *bookingUseCaseImpl) Register(ctx context.Context, input RegisterBookingInput) (*RegisterBookingResult, error) {
	holdCents := input.HoldAmountCents
	if holdCents <= 0 {
		holdCents = u.holdCfg.SecurityAmountCents
	}

	b, err := booking.NewBooking(
		input.CustomerID,
		input.StartAt,
		input.EndAt,
		input.TotalAmountCents,
		input.DepositAmountCents,
		holdCents,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}

	if err := u.bookingRepo.Create(ctx, b); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	job, err := schedule.NewJob(b.ID(), schedule.JobPlaceHold, b.HoldRunAt(u.holdCfg.LeadTime), b.SecurityHoldIdempotencyKey())
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := u.jobRepo.Create(ctx, job); err != nil {
		// Duplicate key means the job already exists for this booking and
		// start time, which is exactly the state we want.
		if !infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	if err := u.dispatcher.BookingConfirmed(ctx, b.ID()); err != nil {
		slog.Warn("failed to publish booking confirmed event", "booking_id", b.ID(), "error", err)
	}

	return &RegisterBookingResult{
		BookingID:     b.ID(),
		Status:        b.Status(),
		BillingStatus: b.BillingStatus(),
		BalanceCents:  b.BalanceAmount().Cents(),
		HoldRunAtUTC:  job.RunAtUTC(),
	}, nil
}
