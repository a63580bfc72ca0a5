package booking

import "errors"

type Status string

const (
	StatusPendingVerification Status = "pending_verification"
	StatusVerifyHoldOK        Status = "verify_hold_ok"
	StatusHoldPlaced          Status = "hold_placed"
	StatusPaid                Status = "paid"
	StatusCancelled           Status = "cancelled"
	StatusFailed              Status = "failed"
)

// statusOrder positions the forward-only lifecycle. Terminal states carry no
// position; transitions into them are handled explicitly.
var statusOrder = map[Status]int{
	StatusPendingVerification: 1,
	StatusVerifyHoldOK:        2,
	StatusHoldPlaced:          3,
	StatusPaid:                4,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingVerification, StatusVerifyHoldOK, StatusHoldPlaced,
		StatusPaid, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

type BillingStatus string

const (
	BillingUnbilled      BillingStatus = "unbilled"
	BillingPartiallyPaid BillingStatus = "partially_paid"
	BillingPaid          BillingStatus = "paid"
)

func (b BillingStatus) String() string {
	return string(b)
}

func (b BillingStatus) IsValid() bool {
	switch b {
	case BillingUnbilled, BillingPartiallyPaid, BillingPaid:
		return true
	default:
		return false
	}
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, errors.New("money cannot be negative")
	}
	return Money{cents: cents}, nil
}

// ReconstructMoney trusts the stored value. Persistence enforces the
// non-negative constraint at write time.
func ReconstructMoney(cents int64) Money {
	return Money{cents: cents}
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Dollars() float64 {
	return float64(m.cents) / 100.0
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// SubFloor subtracts and clamps at zero. Overpayments never produce a
// negative balance.
func (m Money) SubFloor(other Money) Money {
	remaining := m.cents - other.cents
	if remaining < 0 {
		remaining = 0
	}
	return Money{cents: remaining}
}
