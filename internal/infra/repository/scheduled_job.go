package repository

import (
	"context"
	"log/slog"
	"time"

	"rentpay/internal/domain/schedule"
	"rentpay/internal/infra"
	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduledJobRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewScheduledJobRepository(db *pgxpool.Pool, logger *slog.Logger) commands.ScheduledJobRepository {
	return &ScheduledJobRepository{db: db, logger: logger}
}

func (r *ScheduledJobRepository) Create(ctx context.Context, job *schedule.Job) error {
	// The unique idempotency key makes re-enqueueing the same logical
	// action a silent no-op.
	query := `
		INSERT INTO scheduled_jobs (
			id, booking_id, job_type, run_at_utc, status, idempotency_key,
			attempts, last_error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, NULL, now(), now())
		ON CONFLICT (idempotency_key) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		job.ID(),
		job.BookingID(),
		job.Type().String(),
		job.RunAtUTC(),
		job.Status().String(),
		job.IdempotencyKey(),
	)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create scheduled job", err)
	}
	return nil
}

// claimVisibilityTimeout bounds how long a claimed job may sit in
// processing before it is treated as abandoned and handed out again. A
// runner that dies between claim and settle would otherwise strand the
// job forever.
const claimVisibilityTimeout = 5 * time.Minute

// ClaimDue flips up to limit due pending jobs to processing and returns
// them, together with processing jobs whose claim has gone stale. SKIP
// LOCKED keeps concurrent runner instances from claiming the same rows.
func (r *ScheduledJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*schedule.Job, error) {
	query := `
		UPDATE scheduled_jobs SET status = 'processing', updated_at = now()
		WHERE id IN (
			SELECT id FROM scheduled_jobs
			WHERE (status = 'pending' AND run_at_utc <= $1)
			   OR (status = 'processing' AND updated_at <= $2)
			ORDER BY run_at_utc
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, booking_id, job_type, run_at_utc, status, idempotency_key,
		          attempts, COALESCE(last_error, ''), created_at, updated_at
	`

	staleBefore := now.UTC().Add(-claimVisibilityTimeout)
	rows, err := r.db.Query(ctx, query, now.UTC(), staleBefore, limit)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to claim due jobs", err)
	}
	defer rows.Close()

	var jobs []*schedule.Job
	for rows.Next() {
		var (
			id             uuid.UUID
			bookingID      uuid.UUID
			jobType        string
			runAtUTC       time.Time
			status         string
			idempotencyKey string
			attempts       int
			lastError      string
			createdAt      time.Time
			updatedAt      time.Time
		)
		if err := rows.Scan(&id, &bookingID, &jobType, &runAtUTC, &status, &idempotencyKey,
			&attempts, &lastError, &createdAt, &updatedAt); err != nil {
			return nil, infra.ClassifyPgErr(r.logger, "failed to scan claimed job", err)
		}
		jobs = append(jobs, schedule.ReconstructJob(
			id, bookingID,
			schedule.JobType(jobType),
			runAtUTC,
			schedule.JobStatus(status),
			idempotencyKey,
			attempts,
			lastError,
			createdAt, updatedAt,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to read claimed jobs", err)
	}
	return jobs, nil
}

func (r *ScheduledJobRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE scheduled_jobs SET status = 'done', attempts = attempts + 1, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to mark job done", err)
	}
	return nil
}

func (r *ScheduledJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `
		UPDATE scheduled_jobs SET status = 'failed', attempts = attempts + 1,
			last_error = NULLIF($2, ''), updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, id, lastError); err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to mark job failed", err)
	}
	return nil
}

func (r *ScheduledJobRepository) Reschedule(ctx context.Context, id uuid.UUID, runAtUTC time.Time, lastError string) error {
	query := `
		UPDATE scheduled_jobs SET status = 'pending', run_at_utc = $2, attempts = attempts + 1,
			last_error = NULLIF($3, ''), updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, id, runAtUTC.UTC(), lastError); err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to reschedule job", err)
	}
	return nil
}
