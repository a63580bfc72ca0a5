//go:build e2e

package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"rentpay/internal/domain/schedule"
	"rentpay/internal/infra/repository"
	"rentpay/internal/usecase/commands"
	"rentpay/tests/common/dbtest"
	"rentpay/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ScheduledJobSuite struct {
	e2e.SharedSuite
	jobs commands.ScheduledJobRepository
}

func TestScheduledJobSuite(t *testing.T) {
	suite.Run(t, new(ScheduledJobSuite))
}

func (s *ScheduledJobSuite) SetupSuite() {
	s.SetupSharedSuite(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.jobs = repository.NewScheduledJobRepository(s.DB, logger)
}

func (s *ScheduledJobSuite) createDueJob(t *testing.T, ctx context.Context) *schedule.Job {
	t.Helper()
	bookingID := dbtest.InsertBooking(t, s.DB, uuid.New(), 80000, 30000, 50000)
	job, err := schedule.NewJob(bookingID, schedule.JobPlaceHold,
		time.Now().UTC().Add(-time.Minute), bookingID.String()+":security_hold:test")
	s.Require().NoError(err)
	s.Require().NoError(s.jobs.Create(ctx, job))
	return job
}

func (s *ScheduledJobSuite) TestClaimDue() {
	s.Run("claims a due pending job exactly once while the claim is fresh", func() {
		t := s.T()
		ctx := context.Background()
		job := s.createDueJob(t, ctx)

		claimed, err := s.jobs.ClaimDue(ctx, time.Now(), 10)
		s.Require().NoError(err)
		s.Require().Len(claimed, 1)
		s.Equal(job.ID(), claimed[0].ID())

		// A freshly claimed job is invisible to the next tick.
		again, err := s.jobs.ClaimDue(ctx, time.Now(), 10)
		s.Require().NoError(err)
		s.Empty(again)
	})

	s.Run("redelivers a job whose claim went stale", func() {
		t := s.T()
		ctx := context.Background()
		job := s.createDueJob(t, ctx)

		claimed, err := s.jobs.ClaimDue(ctx, time.Now(), 10)
		s.Require().NoError(err)
		s.Require().Len(claimed, 1)

		// Simulate a runner that died after claiming: the processing row
		// ages past the visibility timeout without being settled.
		_, err = s.DB.Exec(ctx,
			"UPDATE scheduled_jobs SET updated_at = now() - interval '10 minutes' WHERE id = $1",
			job.ID())
		s.Require().NoError(err)

		reclaimed, err := s.jobs.ClaimDue(ctx, time.Now(), 10)
		s.Require().NoError(err)
		s.Require().Len(reclaimed, 1)
		s.Equal(job.ID(), reclaimed[0].ID())
	})

	s.Run("a settled job is never redelivered", func() {
		t := s.T()
		ctx := context.Background()
		job := s.createDueJob(t, ctx)

		claimed, err := s.jobs.ClaimDue(ctx, time.Now(), 10)
		s.Require().NoError(err)
		s.Require().Len(claimed, 1)
		s.Require().NoError(s.jobs.MarkDone(ctx, job.ID()))

		_, err = s.DB.Exec(ctx,
			"UPDATE scheduled_jobs SET updated_at = now() - interval '10 minutes' WHERE id = $1",
			job.ID())
		s.Require().NoError(err)

		after, err := s.jobs.ClaimDue(ctx, time.Now(), 10)
		s.Require().NoError(err)
		s.Empty(after)
	})
}
