package usecase

import "time"

const (
	// DefaultTransferCodeTTL is how long a verification code stays valid.
	DefaultTransferCodeTTL = 5 * time.Minute

	// DefaultTransferCodeLength is the number of digits in a code.
	DefaultTransferCodeLength = 6

	// maxCodeGenerationAttempts bounds retries when a freshly generated
	// code collides with another active one.
	maxCodeGenerationAttempts = 5

	// DefaultDepositLabel and DefaultWithdrawLabel are used when the caller
	// supplies no label.
	DefaultDepositLabel  = "Deposit"
	DefaultWithdrawLabel = "Withdrawal"

	// IdempotencyKeyTTL is how long HTTP idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
