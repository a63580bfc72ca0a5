//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"rentpay/internal/domain/booking"
	"rentpay/internal/domain/payment"
	"rentpay/internal/domain/schedule"
	"rentpay/internal/infra"
	"rentpay/internal/infra/gateway"

	"github.com/google/uuid"
)

// Hand-rolled in-memory fakes. They implement the command ports directly so
// failure injection stays explicit in each test.

func notFound() error {
	return infra.RepositoryError{Kind: infra.KindNotFound}
}

func duplicateKey() error {
	return infra.RepositoryError{Kind: infra.KindDuplicateKey}
}

type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*booking.Booking
	saveCalls int
	saveErr   error
}

func newFakeBookingRepo(bs ...*booking.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[uuid.UUID]*booking.Booking)}
	for _, b := range bs {
		repo.bookings[b.ID()] = b
	}
	return repo
}

func (r *fakeBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, notFound()
	}
	return b, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.bookings[b.ID()]; !ok {
		return notFound()
	}
	r.bookings[b.ID()] = b
	return nil
}

type fakePaymentRepo struct {
	mu          sync.Mutex
	records     []*payment.Record
	createErr   error
	createCalls int
	// hideOpenOnce makes the next FindNewestOpen miss, simulating a
	// concurrent insert that lands between the lookup and the create.
	hideOpenOnce bool
}

func (r *fakePaymentRepo) Create(_ context.Context, rec *payment.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *fakePaymentRepo) Save(_ context.Context, rec *payment.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.records {
		if existing.ID() == rec.ID() {
			r.records[i] = rec
			return nil
		}
	}
	return notFound()
}

func (r *fakePaymentRepo) FindNewestOpen(
	_ context.Context,
	bookingID uuid.UUID,
	amountCents int64,
	purpose payment.Purpose,
) (*payment.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideOpenOnce {
		r.hideOpenOnce = false
		return nil, notFound()
	}
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.BookingID() == bookingID && rec.AmountCents() == amountCents &&
			rec.Purpose() == purpose && rec.Status().IsOpen() {
			return rec, nil
		}
	}
	return nil, notFound()
}

func (r *fakePaymentRepo) FindByGatewayRef(_ context.Context, ref string) (*payment.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].GatewayAuthorizationRef() == ref {
			return r.records[i], nil
		}
	}
	return nil, notFound()
}

func (r *fakePaymentRepo) SumCompletedCents(_ context.Context, bookingID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, rec := range r.records {
		if rec.BookingID() == bookingID && rec.Status() == payment.StatusCompleted &&
			rec.Purpose().CountsTowardBalance() {
			total += rec.AmountCents()
		}
	}
	return total, nil
}

type fakeManualPaymentRepo struct {
	mu       sync.Mutex
	payments []*payment.ManualPayment
}

func (r *fakeManualPaymentRepo) Create(_ context.Context, mp *payment.ManualPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, mp)
	return nil
}

func (r *fakeManualPaymentRepo) SumCompletedCents(_ context.Context, bookingID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, mp := range r.payments {
		if mp.BookingID() == bookingID && mp.Status() == payment.StatusCompleted && !mp.IsDeleted() {
			total += mp.AmountCents()
		}
	}
	return total, nil
}

type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []*payment.LedgerEntry
}

func (r *fakeLedgerRepo) Append(_ context.Context, entry *payment.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      map[string]*schedule.Job // keyed by idempotency key
	createErr error
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*schedule.Job)}
}

func (r *fakeJobRepo) Create(_ context.Context, job *schedule.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.jobs[job.IdempotencyKey()]; ok {
		return duplicateKey()
	}
	r.jobs[job.IdempotencyKey()] = job
	return nil
}

func (r *fakeJobRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]*schedule.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*schedule.Job
	for _, job := range r.jobs {
		if len(due) >= limit {
			break
		}
		if job.IsDue(now) {
			due = append(due, job)
		}
	}
	return due, nil
}

func (r *fakeJobRepo) MarkDone(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeJobRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (r *fakeJobRepo) Reschedule(_ context.Context, _ uuid.UUID, _ time.Time, _ string) error {
	return nil
}

type fakeDispatcher struct {
	mu              sync.Mutex
	confirmedCount  int
	holdPlacedCount int
	paymentRecorded int
	lastHoldRef     string
	lastSource      string
}

func (d *fakeDispatcher) BookingConfirmed(_ context.Context, _ uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirmedCount++
	return nil
}

func (d *fakeDispatcher) HoldPlaced(_ context.Context, _ uuid.UUID, ref string, _ int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holdPlacedCount++
	d.lastHoldRef = ref
	return nil
}

func (d *fakeDispatcher) PaymentRecorded(_ context.Context, _ uuid.UUID, _ int64, source string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paymentRecorded++
	d.lastSource = source
	return nil
}

type fakeGateway struct {
	mu sync.Mutex

	createResp    *gateway.AuthorizationResponse
	createErr     error
	createCalls   int
	lastCreateReq gateway.AuthorizationRequest
	lastIdemKey   string

	retrieveResp  map[string]*gateway.AuthorizationResponse
	retrieveErr   error
	retrieveCalls int

	checkoutResp *gateway.CheckoutSessionResponse
	checkoutErr  error

	voidCalls int
	voidErr   error
}

func (g *fakeGateway) CreateAuthorization(
	_ context.Context,
	req gateway.AuthorizationRequest,
	idempotencyKey string,
) (*gateway.AuthorizationResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	g.lastCreateReq = req
	g.lastIdemKey = idempotencyKey
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.createResp != nil {
		return g.createResp, nil
	}
	return &gateway.AuthorizationResponse{
		ID:          "auth_new",
		Status:      "requires_confirmation",
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
	}, nil
}

func (g *fakeGateway) RetrieveAuthorization(_ context.Context, ref string) (*gateway.AuthorizationResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retrieveCalls++
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	if resp, ok := g.retrieveResp[ref]; ok {
		return resp, nil
	}
	return nil, &gateway.GatewayError{Code: gateway.CodeNotFound, StatusCode: 404}
}

func (g *fakeGateway) CreateHostedCheckout(
	_ context.Context,
	req gateway.CheckoutSessionRequest,
) (*gateway.CheckoutSessionResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	if g.checkoutResp != nil {
		return g.checkoutResp, nil
	}
	return &gateway.CheckoutSessionResponse{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (g *fakeGateway) CaptureOrVoid(
	_ context.Context,
	ref string,
	capture bool,
	_ gateway.CaptureOrVoidRequest,
) (*gateway.AuthorizationResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !capture {
		g.voidCalls++
	}
	if g.voidErr != nil {
		return nil, g.voidErr
	}
	return &gateway.AuthorizationResponse{ID: ref, Status: "canceled"}, nil
}
