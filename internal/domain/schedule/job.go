package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidJobType = errors.New("invalid job type")
	ErrEmptyKey       = errors.New("idempotency key is empty")
)

type JobType string

const (
	JobPlaceHold JobType = "place_hold"
)

func (t JobType) IsValid() bool {
	return t == JobPlaceHold
}

func (t JobType) String() string {
	return string(t)
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

func (s JobStatus) String() string {
	return string(s)
}

// Job is one unit of deferred work. The idempotency key is unique per
// logical action, so re-enqueueing the same action is a no-op at insert.
type Job struct {
	id             uuid.UUID
	bookingID      uuid.UUID
	jobType        JobType
	runAtUTC       time.Time
	status         JobStatus
	idempotencyKey string
	attempts       int
	lastError      string
	createdAt      time.Time
	updatedAt      time.Time
}

func NewJob(bookingID uuid.UUID, jobType JobType, runAtUTC time.Time, idempotencyKey string) (*Job, error) {
	if !jobType.IsValid() {
		return nil, ErrInvalidJobType
	}
	if idempotencyKey == "" {
		return nil, ErrEmptyKey
	}
	return &Job{
		id:             uuid.New(),
		bookingID:      bookingID,
		jobType:        jobType,
		runAtUTC:       runAtUTC.UTC(),
		status:         JobPending,
		idempotencyKey: idempotencyKey,
	}, nil
}

func ReconstructJob(
	id, bookingID uuid.UUID,
	jobType JobType,
	runAtUTC time.Time,
	status JobStatus,
	idempotencyKey string,
	attempts int,
	lastError string,
	createdAt, updatedAt time.Time,
) *Job {
	return &Job{
		id:             id,
		bookingID:      bookingID,
		jobType:        jobType,
		runAtUTC:       runAtUTC,
		status:         status,
		idempotencyKey: idempotencyKey,
		attempts:       attempts,
		lastError:      lastError,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (j *Job) IsDue(now time.Time) bool {
	return j.status == JobPending && !j.runAtUTC.After(now.UTC())
}

func (j *Job) ID() uuid.UUID          { return j.id }
func (j *Job) BookingID() uuid.UUID   { return j.bookingID }
func (j *Job) Type() JobType          { return j.jobType }
func (j *Job) RunAtUTC() time.Time    { return j.runAtUTC }
func (j *Job) Status() JobStatus      { return j.status }
func (j *Job) IdempotencyKey() string { return j.idempotencyKey }
func (j *Job) Attempts() int          { return j.attempts }
func (j *Job) LastError() string      { return j.lastError }
func (j *Job) CreatedAt() time.Time   { return j.createdAt }
func (j *Job) UpdatedAt() time.Time   { return j.updatedAt }
