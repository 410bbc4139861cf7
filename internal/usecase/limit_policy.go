package usecase

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
)

// Withdrawal denial reasons. The policy collects every violated rule rather
// than stopping at the first.
const (
	ReasonInsufficientBalance = "Insufficient account balance"
	reasonPerTxFormat         = "Amount exceeds per-transaction limit of %s VND"
	reasonDailyFormat         = "Amount would exceed daily withdrawal limit of %s VND"
)

// LimitPolicy is the stateless evaluator for withdrawal ceilings. The daily
// window is resolved in the bank's fixed timezone, never UTC midnight.
type LimitPolicy struct {
	PerTxCeiling decimal.Decimal
	DailyCeiling decimal.Decimal
	Location     *time.Location
}

// Decision is the outcome of a limit evaluation, with the computed figures
// callers need to render a message without a second round trip.
type Decision struct {
	Allowed    bool
	Reasons    []string
	Balance    decimal.Decimal
	DailyUsed  decimal.Decimal
	DailyLimit decimal.Decimal
	PerTxLimit decimal.Decimal
}

// Window resolves the daily withdrawal window containing now. It is computed
// at evaluation time on every call.
func (p LimitPolicy) Window(now time.Time) domain.DayWindow {
	return domain.DayWindowAt(now, p.Location)
}

// EvaluateWithdrawal applies the three withdrawal rules independently:
// balance coverage, per-transaction ceiling, and the rolling daily ceiling.
func (p LimitPolicy) EvaluateWithdrawal(balance, amount, dailyUsed decimal.Decimal) Decision {
	var reasons []string

	if balance.LessThan(amount) {
		reasons = append(reasons, ReasonInsufficientBalance)
	}

	if amount.GreaterThan(p.PerTxCeiling) {
		reasons = append(reasons, fmt.Sprintf(reasonPerTxFormat, p.PerTxCeiling.String()))
	}

	if dailyUsed.Add(amount).GreaterThan(p.DailyCeiling) {
		reasons = append(reasons, fmt.Sprintf(reasonDailyFormat, p.DailyCeiling.String()))
	}

	return Decision{
		Allowed:    len(reasons) == 0,
		Reasons:    reasons,
		Balance:    balance,
		DailyUsed:  dailyUsed,
		DailyLimit: p.DailyCeiling,
		PerTxLimit: p.PerTxCeiling,
	}
}

// EvaluateTransfer applies the checks performed before issuing a transfer
// code: balance coverage and the per-transaction ceiling. The daily ceiling
// is deliberately not consulted here; the sender leg of a settled transfer
// still counts toward dailyUsed seen by later plain withdrawals.
func (p LimitPolicy) EvaluateTransfer(balance, amount decimal.Decimal) Decision {
	var reasons []string

	if balance.LessThan(amount) {
		reasons = append(reasons, ReasonInsufficientBalance)
	}

	if amount.GreaterThan(p.PerTxCeiling) {
		reasons = append(reasons, fmt.Sprintf(reasonPerTxFormat, p.PerTxCeiling.String()))
	}

	return Decision{
		Allowed:    len(reasons) == 0,
		Reasons:    reasons,
		Balance:    balance,
		DailyLimit: p.DailyCeiling,
		PerTxLimit: p.PerTxCeiling,
	}
}

// Err converts a denial into its classified error. Rule priority follows the
// evaluation order: insufficient balance, then per-transaction, then daily.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}

	code := domain.CodeLimitDaily
	switch d.Reasons[0] {
	case ReasonInsufficientBalance:
		code = domain.CodeInsufficientFunds
	case fmt.Sprintf(reasonPerTxFormat, d.PerTxLimit.String()):
		code = domain.CodeLimitPerTransaction
	}

	return &domain.LimitError{
		Code:       code,
		Reasons:    d.Reasons,
		Balance:    d.Balance,
		DailyUsed:  d.DailyUsed,
		DailyLimit: d.DailyLimit,
		PerTxLimit: d.PerTxLimit,
	}
}
