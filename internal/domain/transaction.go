package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry. The sign of a transaction is
// implied by its type; Amount is always a positive magnitude.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
)

// TransactionCategory is derived from the label convention used by the
// transfer protocol: a settled transfer is a WITHDRAW on the sender labeled
// "Transfer to ..." plus a DEPOSIT on the recipient labeled "Transfer from ...".
type TransactionCategory string

const (
	CategoryDeposit          TransactionCategory = "DEPOSIT"
	CategoryWithdraw         TransactionCategory = "WITHDRAW"
	CategoryTransferSent     TransactionCategory = "TRANSFER_SENT"
	CategoryTransferReceived TransactionCategory = "TRANSFER_RECEIVED"
)

const (
	transferToPrefix   = "Transfer to "
	transferFromPrefix = "Transfer from "
)

// Transaction is an immutable ledger entry. Once committed it is never
// mutated or deleted.
type Transaction struct {
	ID              string
	AccountID       string
	Name            string
	Amount          decimal.Decimal
	Type            TransactionType
	ClientRequestID *string
	CreatedAt       time.Time
}

// Validate checks the transaction magnitude and type.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.Type != TransactionTypeDeposit && t.Type != TransactionTypeWithdraw {
		return ErrInvalidTransactionType
	}

	return nil
}

// Signed returns the amount with the sign implied by the type.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeWithdraw {
		return t.Amount.Neg()
	}

	return t.Amount
}

// Category classifies the transaction by its label convention.
func (t *Transaction) Category() TransactionCategory {
	switch {
	case strings.HasPrefix(t.Name, transferToPrefix):
		return CategoryTransferSent
	case strings.HasPrefix(t.Name, transferFromPrefix):
		return CategoryTransferReceived
	case t.Type == TransactionTypeDeposit:
		return CategoryDeposit
	default:
		return CategoryWithdraw
	}
}

// TransferToLabel builds the sender-side label for a settled transfer.
func TransferToLabel(recipientName, label string) string {
	return transferToPrefix + recipientName + " - " + label
}

// TransferFromLabel builds the recipient-side label for a settled transfer.
func TransferFromLabel(senderName, label string) string {
	return transferFromPrefix + senderName + " - " + label
}

// IsTransferLeg reports whether the transaction is one side of a transfer.
func (t *Transaction) IsTransferLeg() bool {
	c := t.Category()
	return c == CategoryTransferSent || c == CategoryTransferReceived
}
