package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	AccountNumber string          `json:"account_number"`
	Nickname      *string         `json:"nickname,omitempty"`
	Status        string          `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		AccountNumber: a.AccountNumber,
		Nickname:      a.Nickname,
		Status:        string(a.Status),
		Balance:       a.Balance,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// BalanceResponse represents an account balance in API responses.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// RecipientResponse represents a resolved transfer recipient. Only the
// public directory fields are exposed.
type RecipientResponse struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
}

// RecipientFromUseCase converts recipient info to response.
func RecipientFromUseCase(info *usecase.RecipientInfo) *RecipientResponse {
	return &RecipientResponse{
		Name:          info.Name,
		AccountNumber: info.AccountNumber,
	}
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	ClientRequestID *string         `json:"client_request_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		Name:            t.Name,
		Amount:          t.Amount,
		Type:            string(t.Type),
		Category:        string(t.Category()),
		ClientRequestID: t.ClientRequestID,
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// MutationResponse represents a committed or replayed ledger mutation.
type MutationResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	Replayed    bool                 `json:"replayed"`
}

// MutationFromUseCase converts a mutation result to response.
func MutationFromUseCase(result *usecase.MutationResult) *MutationResponse {
	return &MutationResponse{
		Transaction: TransactionFromDomain(result.Transaction),
		Replayed:    result.Replayed,
	}
}

// TransactionPageResponse represents one page of ledger history.
type TransactionPageResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// TransactionPageFromUseCase converts a transaction page to response.
func TransactionPageFromUseCase(page *usecase.TransactionPage) *TransactionPageResponse {
	return &TransactionPageResponse{
		Transactions: TransactionsFromDomain(page.Items),
		Total:        page.Total,
	}
}

// WithdrawalDecisionResponse represents a read-only limit check.
type WithdrawalDecisionResponse struct {
	Allowed    bool            `json:"allowed"`
	Reasons    []string        `json:"reasons,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	DailyUsed  decimal.Decimal `json:"daily_used"`
	DailyLimit decimal.Decimal `json:"daily_limit"`
	PerTxLimit decimal.Decimal `json:"per_transaction_limit"`
}

// DecisionFromUseCase converts a limit decision to response.
func DecisionFromUseCase(d usecase.Decision) *WithdrawalDecisionResponse {
	return &WithdrawalDecisionResponse{
		Allowed:    d.Allowed,
		Reasons:    d.Reasons,
		Balance:    d.Balance,
		DailyUsed:  d.DailyUsed,
		DailyLimit: d.DailyLimit,
		PerTxLimit: d.PerTxLimit,
	}
}

// InitiateTransferResponse represents an issued transfer verification. The
// code itself is never returned over the API.
type InitiateTransferResponse struct {
	RecipientName          string          `json:"recipient_name"`
	RecipientAccountNumber string          `json:"recipient_account_number"`
	Amount                 decimal.Decimal `json:"amount"`
	ExpiresAt              time.Time       `json:"expires_at"`
}

// InitiateFromUseCase converts an initiate result to response.
func InitiateFromUseCase(result *usecase.InitiateTransferResult) *InitiateTransferResponse {
	return &InitiateTransferResponse{
		RecipientName:          result.RecipientName,
		RecipientAccountNumber: result.RecipientAccountNumber,
		Amount:                 result.Amount,
		ExpiresAt:              result.ExpiresAt,
	}
}

// ConfirmTransferResponse represents a settled transfer.
type ConfirmTransferResponse struct {
	Amount                 decimal.Decimal `json:"amount"`
	RecipientName          string          `json:"recipient_name"`
	RecipientAccountNumber string          `json:"recipient_account_number"`
	SenderTransactionID    string          `json:"sender_transaction_id"`
	RecipientTransactionID string          `json:"recipient_transaction_id"`
}

// ConfirmFromUseCase converts a confirm result to response.
func ConfirmFromUseCase(result *usecase.ConfirmTransferResult) *ConfirmTransferResponse {
	return &ConfirmTransferResponse{
		Amount:                 result.Amount,
		RecipientName:          result.RecipientName,
		RecipientAccountNumber: result.RecipientAccountNumber,
		SenderTransactionID:    result.SenderTransactionID,
		RecipientTransactionID: result.RecipientTransactionID,
	}
}

// ConsistencyResponse represents the ledger consistency report.
type ConsistencyResponse struct {
	Consistent bool                `json:"consistent"`
	Mismatches []*MismatchResponse `json:"mismatches"`
}

// MismatchResponse represents one account whose balance disagrees with its
// transaction history.
type MismatchResponse struct {
	AccountID       string          `json:"account_id"`
	AccountNumber   string          `json:"account_number"`
	Balance         decimal.Decimal `json:"balance"`
	TransactionsSum decimal.Decimal `json:"transactions_sum"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(report *usecase.ConsistencyReport) *ConsistencyResponse {
	mismatches := make([]*MismatchResponse, len(report.Mismatches))
	for i, m := range report.Mismatches {
		mismatches[i] = &MismatchResponse{
			AccountID:       m.AccountID,
			AccountNumber:   m.AccountNumber,
			Balance:         m.Balance,
			TransactionsSum: m.TransactionsSum,
		}
	}

	return &ConsistencyResponse{
		Consistent: report.Consistent,
		Mismatches: mismatches,
	}
}

// LimitFigures carries the limit policy numbers attached to a denial.
type LimitFigures struct {
	Reasons    []string        `json:"reasons"`
	Balance    decimal.Decimal `json:"balance"`
	DailyUsed  decimal.Decimal `json:"daily_used"`
	DailyLimit decimal.Decimal `json:"daily_limit"`
	PerTxLimit decimal.Decimal `json:"per_transaction_limit"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
	Limits  *LimitFigures `json:"limits,omitempty"`
}
