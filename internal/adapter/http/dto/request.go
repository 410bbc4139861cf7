package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:  r.Name,
		Email: r.Email,
	}
}

// SetNicknameRequest represents a request to set an account nickname.
type SetNicknameRequest struct {
	Nickname string `json:"nickname"`
}

// DepositRequest represents a request to credit an account.
type DepositRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Name            string          `json:"name"`
	ClientRequestID *string         `json:"client_request_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(accountID string) usecase.DepositInput {
	return usecase.DepositInput{
		AccountID:       accountID,
		Amount:          r.Amount,
		Name:            r.Name,
		ClientRequestID: r.ClientRequestID,
	}
}

// WithdrawRequest represents a request to debit an account.
type WithdrawRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Name            string          `json:"name"`
	ClientRequestID *string         `json:"client_request_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput(accountID string) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		AccountID:       accountID,
		Amount:          r.Amount,
		Name:            r.Name,
		ClientRequestID: r.ClientRequestID,
	}
}

// InitiateTransferRequest represents a request to start a transfer. Recipient
// is an account number or a nickname.
type InitiateTransferRequest struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Name      string          `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *InitiateTransferRequest) ToUseCaseInput(senderID string) usecase.InitiateTransferInput {
	return usecase.InitiateTransferInput{
		SenderID:            senderID,
		RecipientIdentifier: r.Recipient,
		Amount:              r.Amount,
		Name:                r.Name,
	}
}

// ConfirmTransferRequest represents a request to confirm a pending transfer.
type ConfirmTransferRequest struct {
	Code string `json:"code"`
}

// ToUseCaseInput converts to use case input.
func (r *ConfirmTransferRequest) ToUseCaseInput(senderID string) usecase.ConfirmTransferInput {
	return usecase.ConfirmTransferInput{
		SenderID: senderID,
		Code:     r.Code,
	}
}

// TransactionFilterQuery carries parsed transaction list filters.
type TransactionFilterQuery struct {
	Type      string
	From      *time.Time
	To        *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Limit     int
	Offset    int
}

// ToFilter converts to the use case filter. An unknown type string is
// dropped rather than rejected.
func (q *TransactionFilterQuery) ToFilter() usecase.TransactionFilter {
	filter := usecase.TransactionFilter{
		From:      q.From,
		To:        q.To,
		MinAmount: q.MinAmount,
		MaxAmount: q.MaxAmount,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}

	switch domain.TransactionType(q.Type) {
	case domain.TransactionTypeDeposit, domain.TransactionTypeWithdraw:
		typ := domain.TransactionType(q.Type)
		filter.Type = &typ
	}

	return filter
}
