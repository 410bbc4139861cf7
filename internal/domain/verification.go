package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VerificationStatus is the observable state of a transfer verification.
// Confirmed and superseded records are both marked used; the settle itself
// is evidenced by the transaction pair it created.
type VerificationStatus string

const (
	VerificationStatusPending VerificationStatus = "pending"
	VerificationStatusUsed    VerificationStatus = "used"
	VerificationStatusExpired VerificationStatus = "expired"
)

// TransferVerification is a short-lived, single-use record authorizing one
// pending transfer. At most one unused, unexpired verification exists per
// sender at a time; creating a new one supersedes all prior unused ones.
type TransferVerification struct {
	ID                     string
	AccountID              string
	Code                   string
	RecipientAccountNumber string
	RecipientName          string
	Amount                 decimal.Decimal
	Name                   string
	IsUsed                 bool
	UsedAt                 *time.Time
	ExpiresAt              time.Time
	CreatedAt              time.Time
}

// IsActive reports whether the verification can still authorize a settle.
func (v *TransferVerification) IsActive(now time.Time) bool {
	return !v.IsUsed && now.Before(v.ExpiresAt)
}

// Status derives the state at the given instant.
func (v *TransferVerification) Status(now time.Time) VerificationStatus {
	switch {
	case v.IsUsed:
		return VerificationStatusUsed
	case !now.Before(v.ExpiresAt):
		return VerificationStatusExpired
	default:
		return VerificationStatusPending
	}
}
