package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/adapter/http/dto"
	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/usecase"
)

type transactionServiceStub struct {
	depositFn     func(ctx context.Context, input usecase.DepositInput) (*usecase.MutationResult, error)
	withdrawFn    func(ctx context.Context, input usecase.WithdrawInput) (*usecase.MutationResult, error)
	canWithdrawFn func(ctx context.Context, accountID string, amount decimal.Decimal) (usecase.Decision, error)
	listFn        func(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error)
}

func (s *transactionServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (*usecase.MutationResult, error) {
	return s.depositFn(ctx, input)
}

func (s *transactionServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.MutationResult, error) {
	return s.withdrawFn(ctx, input)
}

func (s *transactionServiceStub) CanWithdraw(ctx context.Context, accountID string, amount decimal.Decimal) (usecase.Decision, error) {
	return s.canWithdrawFn(ctx, accountID, amount)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error) {
	return s.listFn(ctx, input)
}

func sampleTransaction(typ domain.TransactionType) *domain.Transaction {
	return &domain.Transaction{
		ID:        "tx-1",
		AccountID: "acc-1",
		Name:      "Cash",
		Amount:    decimal.NewFromInt(5000),
		Type:      typ,
		CreatedAt: time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC),
	}
}

func TestTransactionHandler_Deposit_Success(t *testing.T) {
	var captured usecase.DepositInput
	handler := NewTransactionHandler(&transactionServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*usecase.MutationResult, error) {
			captured = input
			return &usecase.MutationResult{Transaction: sampleTransaction(domain.TransactionTypeDeposit)}, nil
		},
	})

	clientReq := "req-1"
	body, _ := json.Marshal(dto.DepositRequest{
		Amount:          decimal.NewFromInt(5000),
		Name:            "Cash",
		ClientRequestID: &clientReq,
	})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposits", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || captured.ClientRequestID == nil || *captured.ClientRequestID != "req-1" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
}

func TestTransactionHandler_Deposit_ReplayReturns200(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*usecase.MutationResult, error) {
			return &usecase.MutationResult{
				Transaction: sampleTransaction(domain.TransactionTypeDeposit),
				Replayed:    true,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.DepositRequest{Amount: decimal.NewFromInt(5000), Name: "Cash"})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposits", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for replay, got %d", rec.Code)
	}

	var resp dto.MutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Replayed {
		t.Fatal("expected replayed flag to be set")
	}
}

func TestTransactionHandler_Withdraw_LimitDenied(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*usecase.MutationResult, error) {
			return nil, &domain.LimitError{
				Code:       domain.CodeLimitPerTransaction,
				Reasons:    []string{"Amount exceeds maximum per-transaction limit of 20000 VND"},
				Balance:    decimal.NewFromInt(100000),
				DailyUsed:  decimal.Zero,
				DailyLimit: decimal.NewFromInt(500000),
				PerTxLimit: decimal.NewFromInt(20000),
			}
		},
	})

	body, _ := json.Marshal(dto.WithdrawRequest{Amount: decimal.NewFromInt(25000), Name: "Rent"})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdrawals", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != string(domain.CodeLimitPerTransaction) {
		t.Fatalf("expected per-transaction code, got %s", resp.Code)
	}
	if resp.Limits == nil || !resp.Limits.PerTxLimit.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("expected limit figures with per-tx 20000, got %+v", resp.Limits)
	}
}

func TestTransactionHandler_Withdraw_LockedAccount(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*usecase.MutationResult, error) {
			return nil, domain.ErrAccountLocked
		},
	})

	body, _ := json.Marshal(dto.WithdrawRequest{Amount: decimal.NewFromInt(1000), Name: "Rent"})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdrawals", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestTransactionHandler_CanWithdraw(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		canWithdrawFn: func(ctx context.Context, accountID string, amount decimal.Decimal) (usecase.Decision, error) {
			if accountID != "acc-1" || !amount.Equal(decimal.NewFromInt(15000)) {
				t.Fatalf("unexpected args: %s %s", accountID, amount)
			}
			return usecase.Decision{
				Allowed:    true,
				Balance:    decimal.NewFromInt(100000),
				DailyLimit: decimal.NewFromInt(500000),
				PerTxLimit: decimal.NewFromInt(20000),
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/withdrawals/allowance?amount=15000", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.CanWithdraw(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.WithdrawalDecisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Allowed {
		t.Fatal("expected allowed decision")
	}
}

func TestTransactionHandler_CanWithdraw_MissingAmount(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/withdrawals/allowance", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.CanWithdraw(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_List_Filters(t *testing.T) {
	var captured usecase.ListTransactionsInput
	handler := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error) {
			captured = input
			return &usecase.TransactionPage{
				Items: []*domain.Transaction{sampleTransaction(domain.TransactionTypeWithdraw)},
				Total: 1,
			}, nil
		},
	})

	url := "/accounts/acc-1/transactions?type=WITHDRAW&limit=5&offset=10&min_amount=1000&from=2026-03-01T00:00:00Z"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if captured.Filter.Type == nil || *captured.Filter.Type != domain.TransactionTypeWithdraw {
		t.Fatalf("expected withdraw type filter, got %+v", captured.Filter.Type)
	}
	if captured.Filter.Limit != 5 || captured.Filter.Offset != 10 {
		t.Fatalf("expected limit=5 offset=10, got %+v", captured.Filter)
	}
	if captured.Filter.MinAmount == nil || !captured.Filter.MinAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected min amount 1000, got %+v", captured.Filter.MinAmount)
	}
	if captured.Filter.From == nil {
		t.Fatal("expected from filter")
	}

	var resp dto.TransactionPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Transactions) != 1 {
		t.Fatalf("unexpected page: %+v", resp)
	}
	if resp.Transactions[0].Category != string(domain.CategoryWithdraw) {
		t.Fatalf("expected withdraw category, got %s", resp.Transactions[0].Category)
	}
}
