package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/infrastructure/metrics"
)

// TransactionUseCase orchestrates single-account balance mutations: deposits
// and limit-checked withdrawals, each inside one atomic unit.
type TransactionUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	audit           *AuditRecorder
	policy          LimitPolicy
	idGen           IDGenerator
	clock           Clock
	retrier         Retrier
	metrics         *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	audit *AuditRecorder,
	policy LimitPolicy,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		audit:           audit,
		policy:          policy,
		idGen:           idGen,
		clock:           clock,
		retrier:         retrier,
		metrics:         metrics,
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID       string
	Amount          decimal.Decimal
	Name            string
	ClientRequestID *string
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	AccountID       string
	Amount          decimal.Decimal
	Name            string
	ClientRequestID *string
}

// MutationResult is the committed (or replayed) transaction. Replayed means
// a prior transaction with the same client request id was found and the
// effect was not reapplied.
type MutationResult struct {
	Transaction *domain.Transaction
	Replayed    bool
}

// Deposit credits an account. Deposits have no ceiling; only idempotency
// applies.
func (uc *TransactionUseCase) Deposit(ctx context.Context, input DepositInput) (*MutationResult, error) {
	if err := validateMutationInput(input.Amount, input.Name, input.ClientRequestID); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateMutable(); err != nil {
		return nil, err
	}

	if replay, err := uc.findReplay(ctx, input.AccountID, input.ClientRequestID, domain.TransactionTypeDeposit); err != nil || replay != nil {
		return replay, err
	}

	name := input.Name
	if name == "" {
		name = DefaultDepositLabel
	}

	var created *domain.Transaction

	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		created, txErr = uc.applyDeposit(ctx, input, name)
		return txErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRequest) {
			// Lost the race to a concurrent retry with the same key: the
			// unique index fired. Surface the winner as a replay.
			return uc.findReplay(ctx, input.AccountID, input.ClientRequestID, domain.TransactionTypeDeposit)
		}

		return nil, err
	}

	uc.audit.Record(ctx, input.AccountID, domain.AuditActionDeposit, "transaction", domain.JSON{
		"transactionId":   created.ID,
		"amount":          created.Amount.String(),
		"clientRequestId": input.ClientRequestID,
	})

	if uc.metrics != nil {
		uc.metrics.DepositsCreated.Inc()
		uc.metrics.TransactionAmount.Observe(created.Amount.InexactFloat64())
	}

	return &MutationResult{Transaction: created}, nil
}

func (uc *TransactionUseCase) applyDeposit(ctx context.Context, input DepositInput, name string) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateMutable(); err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	transaction := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		Name:            name,
		Amount:          input.Amount,
		Type:            domain.TransactionTypeDeposit,
		ClientRequestID: input.ClientRequestID,
		CreatedAt:       now,
	}

	if err := uc.transactionRepo.Create(ctx, tx, transaction); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyCredit(input.Amount), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transaction, nil
}

// CanWithdraw evaluates the limit policy against a fresh balance read and a
// fresh daily-used sum. Read-only; it never caches the window.
func (uc *TransactionUseCase) CanWithdraw(ctx context.Context, accountID string, amount decimal.Decimal) (Decision, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return Decision{}, err
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return Decision{}, err
	}

	dailyUsed, err := uc.transactionRepo.SumWithdrawalsInWindow(ctx, nil, accountID, uc.policy.Window(uc.clock.Now()))
	if err != nil {
		return Decision{}, err
	}

	return uc.policy.EvaluateWithdrawal(account.Balance, amount, dailyUsed), nil
}

// Withdraw debits an account after passing the limit policy. The policy runs
// twice: once up front for a full denial report, and again inside the atomic
// unit against the locked row, because two concurrent withdrawals must not
// both pass on the same funds or the same daily allowance.
func (uc *TransactionUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*MutationResult, error) {
	if err := validateMutationInput(input.Amount, input.Name, input.ClientRequestID); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateMutable(); err != nil {
		return nil, err
	}

	// The replay check runs before the limit policy: a retried request whose
	// first attempt already committed must return that attempt, even though
	// the committed debit has since drained the balance or the daily
	// allowance.
	if replay, err := uc.findReplay(ctx, input.AccountID, input.ClientRequestID, domain.TransactionTypeWithdraw); err != nil || replay != nil {
		return replay, err
	}

	decision, err := uc.CanWithdraw(ctx, input.AccountID, input.Amount)
	if err != nil {
		return nil, err
	}

	if err := decision.Err(); err != nil {
		uc.countDenial(err)
		return nil, err
	}

	name := input.Name
	if name == "" {
		name = DefaultWithdrawLabel
	}

	var created *domain.Transaction

	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		created, txErr = uc.applyWithdraw(ctx, input, name)
		return txErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRequest) {
			return uc.findReplay(ctx, input.AccountID, input.ClientRequestID, domain.TransactionTypeWithdraw)
		}

		return nil, err
	}

	uc.audit.Record(ctx, input.AccountID, domain.AuditActionWithdraw, "transaction", domain.JSON{
		"transactionId":   created.ID,
		"amount":          created.Amount.String(),
		"clientRequestId": input.ClientRequestID,
	})

	if uc.metrics != nil {
		uc.metrics.WithdrawalsCreated.Inc()
		uc.metrics.TransactionAmount.Observe(created.Amount.InexactFloat64())
	}

	return &MutationResult{Transaction: created}, nil
}

// countDenial records a limit-policy denial by its classified code.
func (uc *TransactionUseCase) countDenial(err error) {
	if uc.metrics == nil {
		return
	}

	var limitErr *domain.LimitError
	if errors.As(err, &limitErr) {
		uc.metrics.WithdrawalsDenied.WithLabelValues(string(limitErr.Code)).Inc()
	}
}

func (uc *TransactionUseCase) applyWithdraw(ctx context.Context, input WithdrawInput, name string) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateMutable(); err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	// Re-verify under the row lock. The policy check above is not part of
	// this atomic unit, and a concurrent withdrawal that committed while we
	// waited for the lock has already moved both the balance and the daily
	// sum. The sum runs on the open tx so it sees that commit.
	dailyUsed, err := uc.transactionRepo.SumWithdrawalsInWindow(ctx, tx, account.ID, uc.policy.Window(now))
	if err != nil {
		return nil, err
	}

	if err := uc.policy.EvaluateWithdrawal(account.Balance, input.Amount, dailyUsed).Err(); err != nil {
		uc.countDenial(err)
		return nil, err
	}

	transaction := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		Name:            name,
		Amount:          input.Amount,
		Type:            domain.TransactionTypeWithdraw,
		ClientRequestID: input.ClientRequestID,
		CreatedAt:       now,
	}

	if err := uc.transactionRepo.Create(ctx, tx, transaction); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyDebit(input.Amount), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transaction, nil
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	AccountID string
	Filter    TransactionFilter
}

// TransactionPage is one page of an account's ledger history.
type TransactionPage struct {
	Items []*domain.Transaction
	Total int64
}

// ListTransactions lists an account's ledger entries, newest first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	if input.Filter.Limit <= 0 {
		input.Filter.Limit = 10
	}

	if input.Filter.Limit > 100 {
		input.Filter.Limit = 100
	}

	items, total, err := uc.transactionRepo.ListByAccount(ctx, input.AccountID, input.Filter)
	if err != nil {
		return nil, err
	}

	return &TransactionPage{Items: items, Total: total}, nil
}

// findReplay performs the idempotency pre-check. No client request id means
// no check: the operation always executes.
func (uc *TransactionUseCase) findReplay(ctx context.Context, accountID string, clientRequestID *string, typ domain.TransactionType) (*MutationResult, error) {
	if clientRequestID == nil || *clientRequestID == "" {
		return nil, nil
	}

	existing, err := uc.transactionRepo.GetByClientRequestID(ctx, accountID, *clientRequestID, typ)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, nil
	}

	if uc.metrics != nil {
		uc.metrics.IdempotentReplays.Inc()
	}

	return &MutationResult{Transaction: existing, Replayed: true}, nil
}

func validateMutationInput(amount decimal.Decimal, name string, clientRequestID *string) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	if err := domain.ValidateLabel(name); err != nil {
		return err
	}

	if clientRequestID != nil {
		if err := domain.ValidateClientRequestID(*clientRequestID); err != nil {
			return err
		}
	}

	return nil
}
