package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vaultbank/bankcore/internal/adapter/http/dto"
	"github.com/vaultbank/bankcore/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Initiate(ctx context.Context, input usecase.InitiateTransferInput) (*usecase.InitiateTransferResult, error)
	Confirm(ctx context.Context, input usecase.ConfirmTransferInput) (*usecase.ConfirmTransferResult, error)
	ListTransferHistory(ctx context.Context, input usecase.ListTransferHistoryInput) (*usecase.TransactionPage, error)
}

// TransferHandler handles the two-phase transfer HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Initiate starts a transfer and dispatches a verification code. The code
// never appears in the response.
func (h *TransferHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	senderID := chi.URLParam(r, "id")
	if senderID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.InitiateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transferUC.Initiate(r.Context(), req.ToUseCaseInput(senderID))
	if err != nil {
		writeDomainError(w, err, "failed to initiate transfer")
		return
	}

	writeJSON(w, http.StatusCreated, dto.InitiateFromUseCase(result))
}

// Confirm settles the transfer authorized by the submitted code.
func (h *TransferHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	senderID := chi.URLParam(r, "id")
	if senderID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.ConfirmTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transferUC.Confirm(r.Context(), req.ToUseCaseInput(senderID))
	if err != nil {
		writeDomainError(w, err, "failed to confirm transfer")
		return
	}

	writeJSON(w, http.StatusOK, dto.ConfirmFromUseCase(result))
}

// History lists sent and received transfer legs, newest first.
func (h *TransferHandler) History(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	page, err := h.transferUC.ListTransferHistory(r.Context(), usecase.ListTransferHistoryInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 10),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list transfer history")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromUseCase(page))
}
