package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	GetByAccountNumber(ctx context.Context, number string) (*domain.Account, error)
	// FindByAccountNumberOrNickname resolves a transfer recipient by exact
	// match on either field.
	FindByAccountNumberOrNickname(ctx context.Context, identifier string) (*domain.Account, error)
	GetByNickname(ctx context.Context, nickname string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetNickname(ctx context.Context, id, nickname string, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	Type      *domain.TransactionType
	From      *time.Time
	To        *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Limit     int
	Offset    int
}

// TransactionRepository defines data access for the immutable ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// GetByClientRequestID is the idempotency pre-check: a prior transaction
	// with the same (account, client request id, type) means the effect was
	// already applied. Returns (nil, nil) when none exists.
	GetByClientRequestID(ctx context.Context, accountID, clientRequestID string, typ domain.TransactionType) (*domain.Transaction, error)
	// SumWithdrawalsInWindow sums WITHDRAW-type transactions inside the
	// daily window, endpoints inclusive. A nil tx reads from the pool;
	// passing an open tx makes the sum part of that atomic unit.
	SumWithdrawalsInWindow(ctx context.Context, tx Transaction, accountID string, window domain.DayWindow) (decimal.Decimal, error)
	ListByAccount(ctx context.Context, accountID string, filter TransactionFilter) ([]*domain.Transaction, int64, error)
	// ListTransferLegs lists only transactions that are one side of a
	// settled transfer, newest first.
	ListTransferLegs(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, int64, error)
}

// VerificationRepository defines data access for transfer verifications.
type VerificationRepository interface {
	Create(ctx context.Context, tx Transaction, v *domain.TransferVerification) error
	// GetActiveByCode finds the unused, unexpired verification matching
	// (sender, code) at the given instant. A missing, used or expired
	// record yields domain.ErrInvalidOrExpiredCode.
	GetActiveByCode(ctx context.Context, accountID, code string, now time.Time) (*domain.TransferVerification, error)
	GetActiveByCodeForUpdate(ctx context.Context, tx Transaction, accountID, code string, now time.Time) (*domain.TransferVerification, error)
	// InvalidateActive marks every unused verification for the sender as
	// used, superseding them. Returns how many were superseded.
	InvalidateActive(ctx context.Context, tx Transaction, accountID string, usedAt time.Time) (int64, error)
	MarkUsed(ctx context.Context, tx Transaction, id string, usedAt time.Time) error
	// DeleteExpiredBefore purges long-expired records. Purging is a
	// maintenance concern, not a correctness one.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// BalanceMismatch is an account whose denormalized balance diverges from the
// signed fold of its transactions. Any mismatch is a correctness bug.
type BalanceMismatch struct {
	AccountID       string
	AccountNumber   string
	Balance         decimal.Decimal
	TransactionsSum decimal.Decimal
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	FindBalanceMismatches(ctx context.Context) ([]*BalanceMismatch, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// TransferDetails accompanies a verification code notification.
type TransferDetails struct {
	RecipientName          string
	RecipientAccountNumber string
	Amount                 decimal.Decimal
	Name                   string
}

// Notifier dispatches the verification code to the sender's notification
// channel. Fire-and-forget: failures are logged and never affect protocol
// state.
type Notifier interface {
	NotifyTransferCode(ctx context.Context, destination, code string, details TransferDetails) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an atomic unit on benign storage conflicts
// (deadlock/serialization failures), a small bounded number of times.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// CodeGenerator generates numeric one-time codes.
type CodeGenerator interface {
	Generate(length int) (string, error)
}

// Clock supplies the current instant so tests can inject a fixed now.
type Clock interface {
	Now() time.Time
}

// IdempotencyStore handles idempotency key storage for the HTTP layer.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
