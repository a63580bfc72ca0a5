package payment

type Purpose string

const (
	PurposePayment      Purpose = "payment"
	PurposeDeposit      Purpose = "deposit"
	PurposeVerifyCard   Purpose = "verify_card"
	PurposeSecurityHold Purpose = "security_hold"
)

func (p Purpose) String() string {
	return string(p)
}

func (p Purpose) IsValid() bool {
	switch p {
	case PurposePayment, PurposeDeposit, PurposeVerifyCard, PurposeSecurityHold:
		return true
	default:
		return false
	}
}

// CountsTowardBalance reports whether completed payments of this purpose
// reduce the booking balance. Card holds reserve funds, they do not pay,
// and security deposits are held separately from the rental amount owed.
func (p Purpose) CountsTowardBalance() bool {
	return p == PurposePayment
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the record still represents in-flight work. Open
// records are the ones authorization reuse may return.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusProcessing
}

type ManualMethod string

const (
	MethodCash      ManualMethod = "cash"
	MethodCheque    ManualMethod = "cheque"
	MethodETransfer ManualMethod = "etransfer"
	MethodTerminal  ManualMethod = "terminal"
	MethodOther     ManualMethod = "other"
)

func (m ManualMethod) String() string {
	return string(m)
}

func (m ManualMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCheque, MethodETransfer, MethodTerminal, MethodOther:
		return true
	default:
		return false
	}
}

type LedgerEntryType string

const (
	EntryCharge         LedgerEntryType = "charge"
	EntryManualPayment  LedgerEntryType = "manual_payment"
	EntryGatewayPayment LedgerEntryType = "gateway_payment"
	EntryHoldAuthorized LedgerEntryType = "hold_authorized"
	EntryAdjustment     LedgerEntryType = "adjustment"
)

func (t LedgerEntryType) String() string {
	return string(t)
}

func (t LedgerEntryType) IsValid() bool {
	switch t {
	case EntryCharge, EntryManualPayment, EntryGatewayPayment, EntryHoldAuthorized, EntryAdjustment:
		return true
	default:
		return false
	}
}
