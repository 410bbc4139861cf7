package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus describes whether an account may be mutated.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusLocked AccountStatus = "locked"
)

// Account represents a customer account holding a balance.
// Balance is denormalized: it must always equal the signed fold of the
// account's committed transactions.
type Account struct {
	ID            string
	Name          string
	Email         string
	AccountNumber string
	Nickname      *string
	Status        AccountStatus
	Balance       decimal.Decimal
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLocked reports whether mutating operations must be rejected.
func (a *Account) IsLocked() bool {
	return a.Status == AccountStatusLocked
}

// ValidateMutable rejects any balance mutation on a locked account.
func (a *Account) ValidateMutable() error {
	if a.IsLocked() {
		return ErrAccountLocked
	}

	return nil
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	return nil
}

// ApplyDebit returns the new balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the new balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
