package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/adapter/http/dto"
	"github.com/vaultbank/bankcore/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*usecase.MutationResult, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.MutationResult, error)
	CanWithdraw(ctx context.Context, accountID string, amount decimal.Decimal) (usecase.Decision, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error)
}

// TransactionHandler handles ledger mutation HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Deposit credits an account.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transactionUC.Deposit(r.Context(), req.ToUseCaseInput(accountID))
	if err != nil {
		writeDomainError(w, err, "failed to deposit")
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.MutationFromUseCase(result))
}

// Withdraw debits an account subject to the limit policy.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transactionUC.Withdraw(r.Context(), req.ToUseCaseInput(accountID))
	if err != nil {
		writeDomainError(w, err, "failed to withdraw")
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.MutationFromUseCase(result))
}

// CanWithdraw evaluates the limit policy without mutating anything.
func (h *TransactionHandler) CanWithdraw(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	amountStr := r.URL.Query().Get("amount")
	if amountStr == "" {
		writeError(w, http.StatusBadRequest, "missing amount", "")
		return
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	decision, err := h.transactionUC.CanWithdraw(r.Context(), accountID, amount)
	if err != nil {
		writeDomainError(w, err, "failed to evaluate withdrawal")
		return
	}

	writeJSON(w, http.StatusOK, dto.DecisionFromUseCase(decision))
}

// List lists an account's ledger history, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	query := dto.TransactionFilterQuery{
		Type:      r.URL.Query().Get("type"),
		From:      parseTimeQuery(r, "from"),
		To:        parseTimeQuery(r, "to"),
		MinAmount: parseDecimalQuery(r, "min_amount"),
		MaxAmount: parseDecimalQuery(r, "max_amount"),
		Limit:     parseIntQuery(r, "limit", 10),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	page, err := h.transactionUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		AccountID: accountID,
		Filter:    query.ToFilter(),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromUseCase(page))
}
