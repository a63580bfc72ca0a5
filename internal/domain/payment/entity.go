package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount  = errors.New("payment amount must be positive")
	ErrInvalidPurpose = errors.New("invalid payment purpose")
	ErrInvalidStatus  = errors.New("invalid payment status")
	ErrInvalidMethod  = errors.New("invalid manual payment method")
	ErrNotOpen        = errors.New("payment record is not open")
)

// Record is one gateway authorization attempt against a booking. Rows with
// the same (booking, amount, purpose) and an open status are interchangeable;
// the reuse lookup depends on that.
type Record struct {
	id                      uuid.UUID
	bookingID               uuid.UUID
	purpose                 Purpose
	amount                  int64
	status                  Status
	gatewayAuthorizationRef string
	createdAt               time.Time
}

func NewRecord(bookingID uuid.UUID, purpose Purpose, amountCents int64) (*Record, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if !purpose.IsValid() {
		return nil, ErrInvalidPurpose
	}
	return &Record{
		id:        uuid.New(),
		bookingID: bookingID,
		purpose:   purpose,
		amount:    amountCents,
		status:    StatusPending,
	}, nil
}

func ReconstructRecord(
	id, bookingID uuid.UUID,
	purpose Purpose,
	amountCents int64,
	status Status,
	gatewayAuthorizationRef string,
	createdAt time.Time,
) *Record {
	return &Record{
		id:                      id,
		bookingID:               bookingID,
		purpose:                 purpose,
		amount:                  amountCents,
		status:                  status,
		gatewayAuthorizationRef: gatewayAuthorizationRef,
		createdAt:               createdAt,
	}
}

// BindAuthorization attaches the gateway reference. The record keeps its
// open status; confirmation is what completes it.
func (r *Record) BindAuthorization(ref string) error {
	if !r.status.IsOpen() {
		return ErrNotOpen
	}
	r.gatewayAuthorizationRef = ref
	return nil
}

func (r *Record) MarkProcessing() error {
	if r.status == StatusProcessing {
		return nil
	}
	if !r.status.IsOpen() {
		return ErrNotOpen
	}
	r.status = StatusProcessing
	return nil
}

func (r *Record) MarkCompleted() error {
	if r.status == StatusCompleted {
		return nil
	}
	if !r.status.IsOpen() {
		return ErrNotOpen
	}
	r.status = StatusCompleted
	return nil
}

func (r *Record) MarkFailed() error {
	if r.status == StatusFailed {
		return nil
	}
	if !r.status.IsOpen() {
		return ErrNotOpen
	}
	r.status = StatusFailed
	return nil
}

func (r *Record) ID() uuid.UUID                   { return r.id }
func (r *Record) BookingID() uuid.UUID            { return r.bookingID }
func (r *Record) Purpose() Purpose                { return r.purpose }
func (r *Record) AmountCents() int64              { return r.amount }
func (r *Record) Status() Status                  { return r.status }
func (r *Record) GatewayAuthorizationRef() string { return r.gatewayAuthorizationRef }
func (r *Record) CreatedAt() time.Time            { return r.createdAt }

// ManualPayment is an off-gateway payment an admin keyed in.
type ManualPayment struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	amount     int64
	method     ManualMethod
	status     Status
	recordedBy uuid.UUID
	note       string
	createdAt  time.Time
	deletedAt  *time.Time
}

func NewManualPayment(
	bookingID uuid.UUID,
	amountCents int64,
	method ManualMethod,
	status Status,
	recordedBy uuid.UUID,
	note string,
) (*ManualPayment, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, ErrInvalidMethod
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return &ManualPayment{
		id:         uuid.New(),
		bookingID:  bookingID,
		amount:     amountCents,
		method:     method,
		status:     status,
		recordedBy: recordedBy,
		note:       note,
	}, nil
}

func ReconstructManualPayment(
	id, bookingID uuid.UUID,
	amountCents int64,
	method ManualMethod,
	status Status,
	recordedBy uuid.UUID,
	note string,
	createdAt time.Time,
	deletedAt *time.Time,
) *ManualPayment {
	return &ManualPayment{
		id:         id,
		bookingID:  bookingID,
		amount:     amountCents,
		method:     method,
		status:     status,
		recordedBy: recordedBy,
		note:       note,
		createdAt:  createdAt,
		deletedAt:  deletedAt,
	}
}

func (m *ManualPayment) IsDeleted() bool {
	return m.deletedAt != nil
}

func (m *ManualPayment) ID() uuid.UUID         { return m.id }
func (m *ManualPayment) BookingID() uuid.UUID  { return m.bookingID }
func (m *ManualPayment) AmountCents() int64    { return m.amount }
func (m *ManualPayment) Method() ManualMethod  { return m.method }
func (m *ManualPayment) Status() Status        { return m.status }
func (m *ManualPayment) RecordedBy() uuid.UUID { return m.recordedBy }
func (m *ManualPayment) Note() string          { return m.note }
func (m *ManualPayment) CreatedAt() time.Time  { return m.createdAt }
func (m *ManualPayment) DeletedAt() *time.Time { return m.deletedAt }

// LedgerEntry is an append-only audit line. It never feeds balance math.
type LedgerEntry struct {
	id              uuid.UUID
	bookingID       uuid.UUID
	entryType       LedgerEntryType
	amount          int64
	sourceReference string
	createdBy       uuid.UUID
	createdAt       time.Time
}

func NewLedgerEntry(
	bookingID uuid.UUID,
	entryType LedgerEntryType,
	amountCents int64,
	sourceReference string,
	createdBy uuid.UUID,
) (*LedgerEntry, error) {
	if !entryType.IsValid() {
		return nil, errors.New("invalid ledger entry type")
	}
	return &LedgerEntry{
		id:              uuid.New(),
		bookingID:       bookingID,
		entryType:       entryType,
		amount:          amountCents,
		sourceReference: sourceReference,
		createdBy:       createdBy,
	}, nil
}

func ReconstructLedgerEntry(
	id, bookingID uuid.UUID,
	entryType LedgerEntryType,
	amountCents int64,
	sourceReference string,
	createdBy uuid.UUID,
	createdAt time.Time,
) *LedgerEntry {
	return &LedgerEntry{
		id:              id,
		bookingID:       bookingID,
		entryType:       entryType,
		amount:          amountCents,
		sourceReference: sourceReference,
		createdBy:       createdBy,
		createdAt:       createdAt,
	}
}

func (l *LedgerEntry) ID() uuid.UUID              { return l.id }
func (l *LedgerEntry) BookingID() uuid.UUID       { return l.bookingID }
func (l *LedgerEntry) EntryType() LedgerEntryType { return l.entryType }
func (l *LedgerEntry) AmountCents() int64         { return l.amount }
func (l *LedgerEntry) SourceReference() string    { return l.sourceReference }
func (l *LedgerEntry) CreatedBy() uuid.UUID       { return l.createdBy }
func (l *LedgerEntry) CreatedAt() time.Time       { return l.createdAt }
