//go:build unit

package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"rentpay/internal/domain/actor"
	"rentpay/internal/domain/schedule"
	"rentpay/internal/pkg/clock"
	"rentpay/internal/usecase/commands"
	"rentpay/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolds struct {
	result     *commands.HoldResult
	err        error
	bookingIDs []uuid.UUID
}

func (h *fakeHolds) PlaceSecurityHold(_ context.Context, bookingID uuid.UUID) (*commands.HoldResult, error) {
	h.bookingIDs = append(h.bookingIDs, bookingID)
	if h.err != nil {
		return nil, h.err
	}
	if h.result != nil {
		return h.result, nil
	}
	return &commands.HoldResult{AuthorizationRef: "auth_hold", AmountCents: 50000}, nil
}

func (h *fakeHolds) VerifyCard(
	_ context.Context, _ actor.Actor, _ uuid.UUID, _ string,
) (*commands.VerifyCardResult, error) {
	return nil, errors.New("not used by the runner")
}

type rescheduleCall struct {
	jobID  uuid.UUID
	runAt  time.Time
	reason string
}

type fakeJobQueue struct {
	due []*schedule.Job

	doneIDs      []uuid.UUID
	failedIDs    []uuid.UUID
	failReasons  []string
	rescheduled  []rescheduleCall
	lastClaimNow time.Time
}

func (q *fakeJobQueue) Create(_ context.Context, _ *schedule.Job) error { return nil }

func (q *fakeJobQueue) ClaimDue(_ context.Context, now time.Time, limit int) ([]*schedule.Job, error) {
	q.lastClaimNow = now
	if len(q.due) > limit {
		return q.due[:limit], nil
	}
	return q.due, nil
}

func (q *fakeJobQueue) MarkDone(_ context.Context, id uuid.UUID) error {
	q.doneIDs = append(q.doneIDs, id)
	return nil
}

func (q *fakeJobQueue) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	q.failedIDs = append(q.failedIDs, id)
	q.failReasons = append(q.failReasons, reason)
	return nil
}

func (q *fakeJobQueue) Reschedule(_ context.Context, id uuid.UUID, runAt time.Time, reason string) error {
	q.rescheduled = append(q.rescheduled, rescheduleCall{jobID: id, runAt: runAt, reason: reason})
	return nil
}

func dueHoldJob(t *testing.T, bookingID uuid.UUID) *schedule.Job {
	t.Helper()
	runAt := time.Date(2026, 7, 9, 15, 0, 0, 0, time.UTC)
	job, err := schedule.NewJob(bookingID, schedule.JobPlaceHold, runAt, bookingID.String()+":security_hold:test")
	require.NoError(t, err)
	return job
}

func newRunner(queue *fakeJobQueue, holds *fakeHolds, clk clock.Clock) *worker.HoldRunner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return worker.NewHoldRunner(queue, holds, clk, time.Minute, 10, logger)
}

func TestProcessDueJobs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 9, 16, 0, 0, 0, time.UTC)

	t.Run("successful hold marks job done", func(t *testing.T) {
		bookingID := uuid.New()
		job := dueHoldJob(t, bookingID)
		queue := &fakeJobQueue{due: []*schedule.Job{job}}
		holds := &fakeHolds{}

		err := newRunner(queue, holds, clock.NewMockClock(now)).ProcessDueJobs(ctx)
		require.NoError(t, err)

		assert.Equal(t, []uuid.UUID{bookingID}, holds.bookingIDs)
		assert.Equal(t, []uuid.UUID{job.ID()}, queue.doneIDs)
		assert.Empty(t, queue.failedIDs)
		assert.Empty(t, queue.rescheduled)
		assert.Equal(t, now, queue.lastClaimNow)
	})

	t.Run("already held still settles the job", func(t *testing.T) {
		job := dueHoldJob(t, uuid.New())
		queue := &fakeJobQueue{due: []*schedule.Job{job}}
		holds := &fakeHolds{result: &commands.HoldResult{AuthorizationRef: "auth_prior", AlreadyHeld: true}}

		err := newRunner(queue, holds, clock.NewMockClock(now)).ProcessDueJobs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{job.ID()}, queue.doneIDs)
	})

	t.Run("authentication challenge is terminal", func(t *testing.T) {
		job := dueHoldJob(t, uuid.New())
		queue := &fakeJobQueue{due: []*schedule.Job{job}}
		holds := &fakeHolds{err: &commands.AuthenticationRequiredError{ClientSecret: "secret"}}

		err := newRunner(queue, holds, clock.NewMockClock(now)).ProcessDueJobs(ctx)
		require.NoError(t, err)

		require.Equal(t, []uuid.UUID{job.ID()}, queue.failedIDs)
		assert.Equal(t, []string{"authentication required"}, queue.failReasons)
		assert.Empty(t, queue.rescheduled)
	})

	t.Run("missing payment method is terminal", func(t *testing.T) {
		job := dueHoldJob(t, uuid.New())
		queue := &fakeJobQueue{due: []*schedule.Job{job}}
		holds := &fakeHolds{err: commands.ErrNoPaymentMethod}

		err := newRunner(queue, holds, clock.NewMockClock(now)).ProcessDueJobs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"no payment method"}, queue.failReasons)
	})

	t.Run("missing booking is terminal", func(t *testing.T) {
		job := dueHoldJob(t, uuid.New())
		queue := &fakeJobQueue{due: []*schedule.Job{job}}
		holds := &fakeHolds{err: commands.ErrBookingNotFound}

		err := newRunner(queue, holds, clock.NewMockClock(now)).ProcessDueJobs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"booking not found"}, queue.failReasons)
	})

	t.Run("transient failure reschedules one interval out", func(t *testing.T) {
		job := dueHoldJob(t, uuid.New())
		queue := &fakeJobQueue{due: []*schedule.Job{job}}
		holds := &fakeHolds{err: commands.ErrGatewayFailure}

		err := newRunner(queue, holds, clock.NewMockClock(now)).ProcessDueJobs(ctx)
		require.NoError(t, err)

		require.Len(t, queue.rescheduled, 1)
		call := queue.rescheduled[0]
		assert.Equal(t, job.ID(), call.jobID)
		assert.Equal(t, now.Add(time.Minute).UTC(), call.runAt)
		assert.NotEmpty(t, call.reason)
		assert.Empty(t, queue.doneIDs)
		assert.Empty(t, queue.failedIDs)
	})

	t.Run("unknown job type is failed without running", func(t *testing.T) {
		job := schedule.ReconstructJob(
			uuid.New(), uuid.New(), schedule.JobType("send_email"),
			now.Add(-time.Hour), schedule.JobPending, "key", 0, "", now, now,
		)
		queue := &fakeJobQueue{due: []*schedule.Job{job}}
		holds := &fakeHolds{}

		err := newRunner(queue, holds, clock.NewMockClock(now)).ProcessDueJobs(ctx)
		require.NoError(t, err)

		assert.Empty(t, holds.bookingIDs)
		assert.Equal(t, []string{"unknown job type"}, queue.failReasons)
	})

	t.Run("batch limit respected", func(t *testing.T) {
		queue := &fakeJobQueue{}
		for i := 0; i < 15; i++ {
			queue.due = append(queue.due, dueHoldJob(t, uuid.New()))
		}
		holds := &fakeHolds{}

		err := newRunner(queue, holds, clock.NewMockClock(now)).ProcessDueJobs(ctx)
		require.NoError(t, err)
		assert.Len(t, holds.bookingIDs, 10)
	})
}
