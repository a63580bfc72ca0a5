package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentpay/internal/domain/schedule"
	"rentpay/internal/pkg/clock"
	"rentpay/internal/pkg/errs"
	"rentpay/internal/usecase/commands"
)

// HoldRunner drains due place_hold jobs on a fixed tick. Delivery is
// at-least-once: a job claimed but not finished returns to the scheduler's
// retry policy, and the hold command itself is safe to re-run.
type HoldRunner struct {
	jobRepo   commands.ScheduledJobRepository
	holds     commands.HoldCommands
	clock     clock.Clock
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewHoldRunner(
	jobRepo commands.ScheduledJobRepository,
	holds commands.HoldCommands,
	clk clock.Clock,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *HoldRunner {
	return &HoldRunner{
		jobRepo:   jobRepo,
		holds:     holds,
		clock:     clk,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (w *HoldRunner) Start(ctx context.Context) {
	w.logger.Info("hold runner started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("hold runner stopping")
			return
		case <-ticker.C:
			if err := w.ProcessDueJobs(ctx); err != nil {
				w.logger.Error("hold job processing failed", "error", err)
			}
		}
	}
}

func (w *HoldRunner) ProcessDueJobs(ctx context.Context) error {
	jobs, err := w.jobRepo.ClaimDue(ctx, w.clock.Now(), w.batchSize)
	if err != nil {
		return err
	}

	var processed int
	for _, job := range jobs {
		if job.Type() != schedule.JobPlaceHold {
			w.logger.Error("unknown job type claimed", "job_id", job.ID(), "job_type", job.Type())
			w.markFailed(ctx, job, "unknown job type")
			continue
		}
		w.runHoldJob(ctx, job)
		processed++
	}

	if processed > 0 {
		w.logger.Info("processed hold jobs", "count", processed)
	}
	return nil
}

func (w *HoldRunner) runHoldJob(ctx context.Context, job *schedule.Job) {
	result, err := w.holds.PlaceSecurityHold(ctx, job.BookingID())
	if err == nil {
		if result.AlreadyHeld {
			w.logger.Info("hold already placed, job settled",
				"job_id", job.ID(), "booking_id", job.BookingID(), "authorization_ref", result.AuthorizationRef)
		}
		if markErr := w.jobRepo.MarkDone(ctx, job.ID()); markErr != nil {
			w.logger.Error("failed to mark job done", "job_id", job.ID(), "error", markErr)
		}
		return
	}

	var authRequired *commands.AuthenticationRequiredError
	switch {
	case errors.As(err, &authRequired):
		// Terminal for the automated job: a human workflow has to get
		// the customer through the verification challenge.
		w.logger.Warn("hold requires customer authentication",
			"job_id", job.ID(), "booking_id", job.BookingID())
		w.markFailed(ctx, job, "authentication required")
	case errs.Is(err, commands.ErrNoPaymentMethod):
		w.logger.Warn("hold job has no payment method on file",
			"job_id", job.ID(), "booking_id", job.BookingID())
		w.markFailed(ctx, job, "no payment method")
	case errs.Is(err, commands.ErrBookingNotFound):
		w.logger.Error("hold job references missing booking",
			"job_id", job.ID(), "booking_id", job.BookingID())
		w.markFailed(ctx, job, "booking not found")
	default:
		// Transient gateway or datastore trouble; push the job back out
		// one interval and let the next tick retry it.
		w.logger.Error("hold job failed, rescheduling",
			"job_id", job.ID(), "booking_id", job.BookingID(), "error", err)
		runAt := w.clock.Now().Add(w.interval).UTC()
		if rescheduleErr := w.jobRepo.Reschedule(ctx, job.ID(), runAt, err.Error()); rescheduleErr != nil {
			w.logger.Error("failed to reschedule job", "job_id", job.ID(), "error", rescheduleErr)
		}
	}
}

func (w *HoldRunner) markFailed(ctx context.Context, job *schedule.Job, reason string) {
	if err := w.jobRepo.MarkFailed(ctx, job.ID(), reason); err != nil {
		w.logger.Error("failed to mark job failed", "job_id", job.ID(), "error", err)
	}
}
