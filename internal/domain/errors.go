package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorCode is the stable machine-readable classification surfaced to callers.
type ErrorCode string

const (
	CodeValidation           ErrorCode = "VALIDATION"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeInsufficientFunds    ErrorCode = "INSUFFICIENT_FUNDS"
	CodeLimitPerTransaction  ErrorCode = "LIMIT_PER_TRANSACTION_EXCEEDED"
	CodeLimitDaily           ErrorCode = "LIMIT_DAILY_EXCEEDED"
	CodeInvalidOrExpiredCode ErrorCode = "INVALID_OR_EXPIRED_CODE"
	CodeSelfTransfer         ErrorCode = "SELF_TRANSFER_REJECTED"
	CodeAccountLocked        ErrorCode = "ACCOUNT_LOCKED"
	CodeInternal             ErrorCode = "INTERNAL"
	// CodeIdempotentReplay is a success signal, not an error: the original
	// effect was found and not reapplied.
	CodeIdempotentReplay ErrorCode = "IDEMPOTENT_REPLAY"
)

var (
	// ErrValidation is the sentinel wrapped by every malformed-input error so
	// the taxonomy can classify them without enumerating messages.
	ErrValidation = errors.New("validation failed")

	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrRecipientNotFound = errors.New("recipient account not found")
	ErrAccountLocked     = errors.New("account is locked")
	ErrNicknameTaken     = errors.New("nickname already taken")
	ErrNicknameSet       = errors.New("nickname already set")

	// Transaction errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInsufficientFunds      = errors.New("insufficient account balance")

	// Transfer errors
	ErrSelfTransfer          = errors.New("cannot transfer to your own account")
	ErrInvalidOrExpiredCode  = errors.New("invalid or expired verification code")
	ErrVerificationNotFound  = errors.New("verification not found")
	ErrTransferCodeExhausted = errors.New("could not generate a unique verification code")

	// Storage-constraint races. These back up the application-level
	// pre-checks: the unique indexes close the window between check and
	// insert.
	ErrDuplicateRequest = errors.New("transaction with this client request id already exists")
	ErrDuplicateCode    = errors.New("verification code already active")
)

// LimitError is a limit-policy denial carrying the figures the caller needs
// to render an informative message without a second round trip.
type LimitError struct {
	Code       ErrorCode
	Reasons    []string
	Balance    decimal.Decimal
	DailyUsed  decimal.Decimal
	DailyLimit decimal.Decimal
	PerTxLimit decimal.Decimal
}

func (e *LimitError) Error() string {
	if len(e.Reasons) > 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Reasons[0])
	}

	return string(e.Code)
}

// CodeOf maps an error to its stable taxonomy code.
func CodeOf(err error) ErrorCode {
	var limitErr *LimitError
	if errors.As(err, &limitErr) {
		return limitErr.Code
	}

	switch {
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrRecipientNotFound),
		errors.Is(err, ErrVerificationNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrAccountLocked):
		return CodeAccountLocked
	case errors.Is(err, ErrSelfTransfer):
		return CodeSelfTransfer
	case errors.Is(err, ErrInvalidOrExpiredCode):
		return CodeInvalidOrExpiredCode
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidTransactionType),
		errors.Is(err, ErrNicknameTaken),
		errors.Is(err, ErrNicknameSet):
		return CodeValidation
	default:
		return CodeInternal
	}
}
