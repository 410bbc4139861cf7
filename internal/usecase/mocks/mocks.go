package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/usecase"
)

// MockAccountRepository is an in-memory mock of usecase.AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) GetByAccountNumber(ctx context.Context, number string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.AccountNumber == number {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindByAccountNumberOrNickname(ctx context.Context, identifier string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.AccountNumber == identifier {
			return acc, nil
		}
		if acc.Nickname != nil && *acc.Nickname == identifier {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByNickname(ctx context.Context, nickname string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Nickname != nil && *acc.Nickname == nickname {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) SetNickname(ctx context.Context, id, nickname string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Nickname = &nickname
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockTransactionRepository is an in-memory mock of
// usecase.TransactionRepository. Create enforces the (account, client
// request id, type) uniqueness the storage schema guarantees.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions []*domain.Transaction

	CreateFunc                 func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	GetByClientRequestIDFunc   func(ctx context.Context, accountID, clientRequestID string, typ domain.TransactionType) (*domain.Transaction, error)
	SumWithdrawalsInWindowFunc func(ctx context.Context, tx usecase.Transaction, accountID string, window domain.DayWindow) (decimal.Decimal, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ClientRequestID != nil {
		for _, existing := range m.transactions {
			if existing.AccountID == t.AccountID &&
				existing.Type == t.Type &&
				existing.ClientRequestID != nil &&
				*existing.ClientRequestID == *t.ClientRequestID {
				return domain.ErrDuplicateRequest
			}
		}
	}
	m.transactions = append(m.transactions, t)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("transaction not found")
}

func (m *MockTransactionRepository) GetByClientRequestID(ctx context.Context, accountID, clientRequestID string, typ domain.TransactionType) (*domain.Transaction, error) {
	if m.GetByClientRequestIDFunc != nil {
		return m.GetByClientRequestIDFunc(ctx, accountID, clientRequestID, typ)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.AccountID == accountID && t.Type == typ &&
			t.ClientRequestID != nil && *t.ClientRequestID == clientRequestID {
			return t, nil
		}
	}
	return nil, nil
}

func (m *MockTransactionRepository) SumWithdrawalsInWindow(ctx context.Context, tx usecase.Transaction, accountID string, window domain.DayWindow) (decimal.Decimal, error) {
	if m.SumWithdrawalsInWindowFunc != nil {
		return m.SumWithdrawalsInWindowFunc(ctx, tx, accountID, window)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, t := range m.transactions {
		if t.AccountID == accountID && t.Type == domain.TransactionTypeWithdraw && window.Contains(t.CreatedAt) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, filter usecase.TransactionFilter) ([]*domain.Transaction, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.Transaction
	for _, t := range m.transactions {
		if t.AccountID != accountID {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.From != nil && t.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.CreatedAt.After(*filter.To) {
			continue
		}
		if filter.MinAmount != nil && t.Amount.LessThan(*filter.MinAmount) {
			continue
		}
		if filter.MaxAmount != nil && t.Amount.GreaterThan(*filter.MaxAmount) {
			continue
		}
		items = append(items, t)
	}
	return items, int64(len(items)), nil
}

func (m *MockTransactionRepository) ListTransferLegs(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.Transaction
	for _, t := range m.transactions {
		if t.AccountID == accountID && t.IsTransferLeg() {
			items = append(items, t)
		}
	}
	return items, int64(len(items)), nil
}

// All returns every stored transaction. Test helper.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out
}

// MockVerificationRepository is an in-memory mock of
// usecase.VerificationRepository. Create enforces the unique-active-code
// constraint.
type MockVerificationRepository struct {
	mu            sync.RWMutex
	verifications map[string]*domain.TransferVerification

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, v *domain.TransferVerification) error
	GetActiveByCodeFunc  func(ctx context.Context, accountID, code string, now time.Time) (*domain.TransferVerification, error)
	InvalidateActiveFunc func(ctx context.Context, tx usecase.Transaction, accountID string, usedAt time.Time) (int64, error)
	MarkUsedFunc         func(ctx context.Context, tx usecase.Transaction, id string, usedAt time.Time) error
}

func NewMockVerificationRepository() *MockVerificationRepository {
	return &MockVerificationRepository{
		verifications: make(map[string]*domain.TransferVerification),
	}
}

func (m *MockVerificationRepository) Create(ctx context.Context, tx usecase.Transaction, v *domain.TransferVerification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, v)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.verifications {
		if !existing.IsUsed && existing.Code == v.Code {
			return domain.ErrDuplicateCode
		}
	}
	m.verifications[v.ID] = v
	return nil
}

func (m *MockVerificationRepository) GetActiveByCode(ctx context.Context, accountID, code string, now time.Time) (*domain.TransferVerification, error) {
	if m.GetActiveByCodeFunc != nil {
		return m.GetActiveByCodeFunc(ctx, accountID, code, now)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.verifications {
		if v.AccountID == accountID && v.Code == code && v.IsActive(now) {
			return v, nil
		}
	}
	return nil, domain.ErrInvalidOrExpiredCode
}

func (m *MockVerificationRepository) GetActiveByCodeForUpdate(ctx context.Context, tx usecase.Transaction, accountID, code string, now time.Time) (*domain.TransferVerification, error) {
	return m.GetActiveByCode(ctx, accountID, code, now)
}

func (m *MockVerificationRepository) InvalidateActive(ctx context.Context, tx usecase.Transaction, accountID string, usedAt time.Time) (int64, error) {
	if m.InvalidateActiveFunc != nil {
		return m.InvalidateActiveFunc(ctx, tx, accountID, usedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range m.verifications {
		if v.AccountID == accountID && !v.IsUsed {
			v.IsUsed = true
			t := usedAt
			v.UsedAt = &t
			n++
		}
	}
	return n, nil
}

func (m *MockVerificationRepository) MarkUsed(ctx context.Context, tx usecase.Transaction, id string, usedAt time.Time) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, tx, id, usedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.verifications[id]; ok {
		v.IsUsed = true
		t := usedAt
		v.UsedAt = &t
		return nil
	}
	return domain.ErrVerificationNotFound
}

func (m *MockVerificationRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, v := range m.verifications {
		if v.ExpiresAt.Before(cutoff) {
			delete(m.verifications, id)
			n++
		}
	}
	return n, nil
}

// MockLedgerRepository is a mock of usecase.LedgerRepository.
type MockLedgerRepository struct {
	FindBalanceMismatchesFunc func(ctx context.Context) ([]*usecase.BalanceMismatch, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) FindBalanceMismatches(ctx context.Context) ([]*usecase.BalanceMismatch, error) {
	if m.FindBalanceMismatchesFunc != nil {
		return m.FindBalanceMismatchesFunc(ctx)
	}
	return nil, nil
}

// MockAuditRepository records audit logs in memory.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.ActorID != "" && l.ActorID != filter.ActorID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// MockNotifier records dispatched transfer codes.
type MockNotifier struct {
	mu    sync.Mutex
	calls []NotifyCall

	NotifyTransferCodeFunc func(ctx context.Context, destination, code string, details usecase.TransferDetails) error
}

// NotifyCall is one recorded notification.
type NotifyCall struct {
	Destination string
	Code        string
	Details     usecase.TransferDetails
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) NotifyTransferCode(ctx context.Context, destination, code string, details usecase.TransferDetails) error {
	if m.NotifyTransferCodeFunc != nil {
		return m.NotifyTransferCodeFunc(ctx, destination, code, details)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, NotifyCall{Destination: destination, Code: code, Details: details})
	return nil
}

// Calls returns the recorded notifications.
func (m *MockNotifier) Calls() []NotifyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotifyCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockTransaction is a no-op usecase.Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockCodeGenerator generates sequential numeric codes.
type MockCodeGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func(length int) (string, error)
}

func NewMockCodeGenerator() *MockCodeGenerator {
	return &MockCodeGenerator{}
}

func (m *MockCodeGenerator) Generate(length int) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(length)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%0*d", length, 100000+m.counter), nil
}

// PassthroughRetrier runs the operation once without retrying.
type PassthroughRetrier struct{}

func (PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}
