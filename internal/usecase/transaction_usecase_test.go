package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/usecase"
	"github.com/vaultbank/bankcore/internal/usecase/mocks"
)

func strPtr(s string) *string {
	return &s
}

type transactionFixture struct {
	uc          *usecase.TransactionUseCase
	accountRepo *mocks.MockAccountRepository
	txRepo      *mocks.MockTransactionRepository
	auditRepo   *mocks.MockAuditRepository
	now         time.Time
}

func newTransactionFixture(t *testing.T) *transactionFixture {
	t.Helper()

	now := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	accountRepo := mocks.NewMockAccountRepository()
	txRepo := mocks.NewMockTransactionRepository()
	auditRepo := mocks.NewMockAuditRepository()
	idGen := mocks.NewMockIDGenerator()
	clock := usecase.FixedClock{Instant: now}

	uc := usecase.NewTransactionUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		txRepo,
		usecase.NewAuditRecorder(auditRepo, idGen, clock, zerolog.Nop(), nil),
		testPolicy(),
		idGen,
		clock,
		mocks.PassthroughRetrier{},
		nil,
	)

	return &transactionFixture{
		uc:          uc,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		auditRepo:   auditRepo,
		now:         now,
	}
}

func (f *transactionFixture) seedAccount(t *testing.T, id string, balance int64) *domain.Account {
	t.Helper()

	account := &domain.Account{
		ID:            id,
		Name:          "Alice",
		Email:         "alice@example.com",
		AccountNumber: "1000000001",
		Status:        domain.AccountStatusActive,
		Balance:       decimal.NewFromInt(balance),
		CreatedAt:     f.now,
		UpdatedAt:     f.now,
	}
	if err := f.accountRepo.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	return account
}

func TestTransactionUseCase_Deposit(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 1000)

	result, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(500),
		Name:      "Paycheck",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Replayed {
		t.Error("fresh deposit must not be a replay")
	}

	if result.Transaction.Type != domain.TransactionTypeDeposit {
		t.Errorf("Type = %s, want %s", result.Transaction.Type, domain.TransactionTypeDeposit)
	}

	account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("balance = %s, want 1500", account.Balance)
	}

	logs, _ := f.auditRepo.List(context.Background(), domain.AuditFilter{Action: domain.AuditActionDeposit})
	if len(logs) != 1 {
		t.Errorf("got %d audit records, want 1", len(logs))
	}
}

func TestTransactionUseCase_Deposit_Validation(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 1000)

	tests := []struct {
		name  string
		input usecase.DepositInput
		want  error
	}{
		{
			name:  "zero amount",
			input: usecase.DepositInput{AccountID: "acc-1", Amount: decimal.Zero},
			want:  domain.ErrInvalidAmount,
		},
		{
			name:  "negative amount",
			input: usecase.DepositInput{AccountID: "acc-1", Amount: decimal.NewFromInt(-5)},
			want:  domain.ErrInvalidAmount,
		},
		{
			name:  "unknown account",
			input: usecase.DepositInput{AccountID: "acc-missing", Amount: decimal.NewFromInt(5)},
			want:  domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Deposit(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionUseCase_Deposit_LockedAccount(t *testing.T) {
	f := newTransactionFixture(t)
	account := f.seedAccount(t, "acc-1", 1000)
	account.Status = domain.AccountStatusLocked

	_, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(500),
	})
	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Errorf("err = %v, want %v", err, domain.ErrAccountLocked)
	}
}

func TestTransactionUseCase_Deposit_IdempotentReplay(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 1000)

	input := usecase.DepositInput{
		AccountID:       "acc-1",
		Amount:          decimal.NewFromInt(500),
		ClientRequestID: strPtr("req-1"),
	}

	first, err := f.uc.Deposit(context.Background(), input)
	if err != nil {
		t.Fatalf("first deposit: %v", err)
	}

	second, err := f.uc.Deposit(context.Background(), input)
	if err != nil {
		t.Fatalf("replayed deposit: %v", err)
	}

	if !second.Replayed {
		t.Error("second deposit with same client request id must be a replay")
	}

	if second.Transaction.ID != first.Transaction.ID {
		t.Errorf("replay returned %s, want original %s", second.Transaction.ID, first.Transaction.ID)
	}

	account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("balance = %s, want 1500 (effect applied once)", account.Balance)
	}
}

func TestTransactionUseCase_Deposit_SameKeyDifferentType(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 1000)

	key := strPtr("req-shared")

	if _, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID:       "acc-1",
		Amount:          decimal.NewFromInt(500),
		ClientRequestID: key,
	}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// The same key scopes per (account, type): a withdrawal is a distinct
	// operation, not a replay.
	result, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
		AccountID:       "acc-1",
		Amount:          decimal.NewFromInt(200),
		ClientRequestID: key,
	})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	if result.Replayed {
		t.Error("withdrawal must not replay a deposit sharing the key")
	}

	account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("balance = %s, want 1300", account.Balance)
	}
}

func TestTransactionUseCase_Deposit_DuplicateRaceReturnsWinner(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 1000)

	winner := &domain.Transaction{
		ID:              "tx-winner",
		AccountID:       "acc-1",
		Amount:          decimal.NewFromInt(500),
		Type:            domain.TransactionTypeDeposit,
		ClientRequestID: strPtr("req-1"),
		CreatedAt:       f.now,
	}

	// Pre-check misses, insert hits the unique index, re-fetch finds the
	// winner.
	calls := 0
	f.txRepo.GetByClientRequestIDFunc = func(ctx context.Context, accountID, clientRequestID string, typ domain.TransactionType) (*domain.Transaction, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return winner, nil
	}
	f.txRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, tr *domain.Transaction) error {
		return domain.ErrDuplicateRequest
	}

	result, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID:       "acc-1",
		Amount:          decimal.NewFromInt(500),
		ClientRequestID: strPtr("req-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Replayed {
		t.Error("losing the insert race must surface as a replay")
	}

	if result.Transaction.ID != "tx-winner" {
		t.Errorf("Transaction.ID = %s, want tx-winner", result.Transaction.ID)
	}
}

func TestTransactionUseCase_Withdraw(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 100000)

	result, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(5000),
		Name:      "Rent",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Transaction.Type != domain.TransactionTypeWithdraw {
		t.Errorf("Type = %s, want %s", result.Transaction.Type, domain.TransactionTypeWithdraw)
	}

	account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(95000)) {
		t.Errorf("balance = %s, want 95000", account.Balance)
	}
}

func TestTransactionUseCase_Withdraw_Denials(t *testing.T) {
	tests := []struct {
		name     string
		balance  int64
		amount   int64
		wantCode domain.ErrorCode
	}{
		{
			name:     "insufficient funds",
			balance:  1000,
			amount:   5000,
			wantCode: domain.CodeInsufficientFunds,
		},
		{
			name:     "per-transaction ceiling",
			balance:  100000,
			amount:   20001,
			wantCode: domain.CodeLimitPerTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransactionFixture(t)
			f.seedAccount(t, "acc-1", tt.balance)

			_, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
				AccountID: "acc-1",
				Amount:    decimal.NewFromInt(tt.amount),
			})

			var limitErr *domain.LimitError
			if !errors.As(err, &limitErr) {
				t.Fatalf("expected *domain.LimitError, got %v", err)
			}

			if limitErr.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", limitErr.Code, tt.wantCode)
			}

			account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
			if !account.Balance.Equal(decimal.NewFromInt(tt.balance)) {
				t.Errorf("denied withdrawal must not move the balance, got %s", account.Balance)
			}
		})
	}
}

func TestTransactionUseCase_Withdraw_ReplayAfterBalanceDrained(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 100)

	input := usecase.WithdrawInput{
		AccountID:       "acc-1",
		Amount:          decimal.NewFromInt(60),
		ClientRequestID: strPtr("req-replay"),
	}

	first, err := f.uc.Withdraw(context.Background(), input)
	if err != nil {
		t.Fatalf("first withdrawal: %v", err)
	}

	// The committed debit left only 40; a retry of the same request must
	// replay the first attempt, not fail the limit policy against the
	// drained balance.
	second, err := f.uc.Withdraw(context.Background(), input)
	if err != nil {
		t.Fatalf("retried withdrawal: %v", err)
	}

	if !second.Replayed {
		t.Error("retry with same client request id must be a replay")
	}

	if second.Transaction.ID != first.Transaction.ID {
		t.Errorf("replay returned %s, want original %s", second.Transaction.ID, first.Transaction.ID)
	}

	account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("balance = %s, want 40 (effect applied once)", account.Balance)
	}
}

func TestTransactionUseCase_Withdraw_DailyRecheckUnderLock(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 10000000)

	// A rival withdrawal commits between the policy evaluation and the row
	// lock: the pool-side sum still reads 0, the tx-side sum sees 495000
	// already spent of the 500000 ceiling.
	f.txRepo.SumWithdrawalsInWindowFunc = func(ctx context.Context, tx usecase.Transaction, accountID string, window domain.DayWindow) (decimal.Decimal, error) {
		if tx == nil {
			return decimal.Zero, nil
		}
		return decimal.NewFromInt(495000), nil
	}

	_, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(10000),
	})

	var limitErr *domain.LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected *domain.LimitError, got %v", err)
	}

	if limitErr.Code != domain.CodeLimitDaily {
		t.Errorf("Code = %s, want %s", limitErr.Code, domain.CodeLimitDaily)
	}

	account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(10000000)) {
		t.Errorf("denied withdrawal must not move the balance, got %s", account.Balance)
	}
}

func TestTransactionUseCase_Withdraw_DailyCeilingAccumulates(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 10000000)

	// Daily ceiling is 500000; burn 490000 of it in prior withdrawals.
	for i := 0; i < 49; i++ {
		if _, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(10000),
		}); err != nil {
			t.Fatalf("withdrawal %d: %v", i, err)
		}
	}

	// Exactly reaching the ceiling is allowed.
	if _, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(10000),
	}); err != nil {
		t.Fatalf("withdrawal to exact ceiling: %v", err)
	}

	// The ceiling is spent; one more unit is denied.
	_, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(1),
	})

	var limitErr *domain.LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected *domain.LimitError, got %v", err)
	}

	if limitErr.Code != domain.CodeLimitDaily {
		t.Errorf("Code = %s, want %s", limitErr.Code, domain.CodeLimitDaily)
	}

	if !limitErr.DailyUsed.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("DailyUsed = %s, want 500000", limitErr.DailyUsed)
	}
}

func TestTransactionUseCase_Withdraw_DepositsDoNotConsumeDailyLimit(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 10000000)

	if _, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(1000000),
	}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	decision, err := f.uc.CanWithdraw(context.Background(), "acc-1", decimal.NewFromInt(10000))
	if err != nil {
		t.Fatalf("can withdraw: %v", err)
	}

	if !decision.DailyUsed.IsZero() {
		t.Errorf("DailyUsed = %s, want 0 after deposits only", decision.DailyUsed)
	}
}

func TestTransactionUseCase_CanWithdraw(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 15000)

	decision, err := f.uc.CanWithdraw(context.Background(), "acc-1", decimal.NewFromInt(10000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Allowed {
		t.Errorf("expected allowed, reasons %v", decision.Reasons)
	}

	if !decision.Balance.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("Balance = %s, want 15000", decision.Balance)
	}

	// Ask beyond the balance. Read-only: nothing moves.
	decision, err = f.uc.CanWithdraw(context.Background(), "acc-1", decimal.NewFromInt(16000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decision.Allowed {
		t.Error("expected denial beyond balance")
	}

	account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("dry-run check moved the balance to %s", account.Balance)
	}
}

func TestTransactionUseCase_ListTransactions(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedAccount(t, "acc-1", 100000)

	if _, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(500),
	}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if _, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(200),
	}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	page, err := f.uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Total != 2 {
		t.Errorf("Total = %d, want 2", page.Total)
	}

	withdrawType := domain.TransactionTypeWithdraw
	page, err = f.uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		AccountID: "acc-1",
		Filter:    usecase.TransactionFilter{Type: &withdrawType},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Total != 1 {
		t.Errorf("filtered Total = %d, want 1", page.Total)
	}

	if _, err := f.uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{AccountID: "acc-missing"}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("err = %v, want %v", err, domain.ErrAccountNotFound)
	}
}
