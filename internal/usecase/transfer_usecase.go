package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/infrastructure/metrics"
)

// TransferUseCase runs the two-phase transfer protocol: initiate issues a
// time-boxed one-time code, confirm settles both accounts atomically.
type TransferUseCase struct {
	txManager        TransactionManager
	accountRepo      AccountRepository
	transactionRepo  TransactionRepository
	verificationRepo VerificationRepository
	audit            *AuditRecorder
	notifier         Notifier
	policy           LimitPolicy
	idGen            IDGenerator
	codeGen          CodeGenerator
	clock            Clock
	retrier          Retrier
	logger           zerolog.Logger
	metrics          *metrics.Metrics
	codeTTL          time.Duration
	codeLength       int
}

// TransferConfig carries the dependencies and knobs for a TransferUseCase.
type TransferConfig struct {
	TxManager        TransactionManager
	AccountRepo      AccountRepository
	TransactionRepo  TransactionRepository
	VerificationRepo VerificationRepository
	Audit            *AuditRecorder
	Notifier         Notifier
	Policy           LimitPolicy
	IDGen            IDGenerator
	CodeGen          CodeGenerator
	Clock            Clock
	Retrier          Retrier
	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	CodeTTL          time.Duration
	CodeLength       int
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(cfg TransferConfig) *TransferUseCase {
	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = DefaultTransferCodeTTL
	}

	if cfg.CodeLength == 0 {
		cfg.CodeLength = DefaultTransferCodeLength
	}

	return &TransferUseCase{
		txManager:        cfg.TxManager,
		accountRepo:      cfg.AccountRepo,
		transactionRepo:  cfg.TransactionRepo,
		verificationRepo: cfg.VerificationRepo,
		audit:            cfg.Audit,
		notifier:         cfg.Notifier,
		policy:           cfg.Policy,
		idGen:            cfg.IDGen,
		codeGen:          cfg.CodeGen,
		clock:            cfg.Clock,
		retrier:          cfg.Retrier,
		logger:           cfg.Logger,
		metrics:          cfg.Metrics,
		codeTTL:          cfg.CodeTTL,
		codeLength:       cfg.CodeLength,
	}
}

// InitiateTransferInput represents input for starting a transfer.
type InitiateTransferInput struct {
	SenderID            string
	RecipientIdentifier string
	Amount              decimal.Decimal
	Name                string
}

// InitiateTransferResult is returned to the caller after a code is issued.
type InitiateTransferResult struct {
	RecipientName          string
	RecipientAccountNumber string
	Amount                 decimal.Decimal
	ExpiresAt              time.Time
}

// Initiate validates funds and limits, resolves the recipient, supersedes
// any prior unused code for the sender, persists a pending verification and
// dispatches the code. Notification failure never rolls the pending state
// back.
func (uc *TransferUseCase) Initiate(ctx context.Context, input InitiateTransferInput) (*InitiateTransferResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateLabel(input.Name); err != nil {
		return nil, err
	}

	sender, err := uc.accountRepo.GetByID(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}

	if err := sender.ValidateMutable(); err != nil {
		return nil, err
	}

	if err := uc.policy.EvaluateTransfer(sender.Balance, input.Amount).Err(); err != nil {
		return nil, err
	}

	recipient, err := uc.accountRepo.FindByAccountNumberOrNickname(ctx, input.RecipientIdentifier)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrRecipientNotFound
		}

		return nil, err
	}

	if recipient.ID == sender.ID {
		return nil, domain.ErrSelfTransfer
	}

	if recipient.IsLocked() {
		return nil, domain.ErrAccountLocked
	}

	now := uc.clock.Now()

	verification := &domain.TransferVerification{
		ID:                     uc.idGen.Generate(),
		AccountID:              sender.ID,
		RecipientAccountNumber: recipient.AccountNumber,
		RecipientName:          recipient.Name,
		Amount:                 input.Amount,
		Name:                   input.Name,
		ExpiresAt:              now.Add(uc.codeTTL),
		CreatedAt:              now,
	}

	superseded, err := uc.issueCode(ctx, verification, now)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersInitiated.Inc()
		uc.metrics.CodesSuperseded.Add(float64(superseded))
	}

	// Fire-and-forget by design: the pending verification stands even if
	// the notification channel is down.
	if err := uc.notifier.NotifyTransferCode(ctx, sender.Email, verification.Code, TransferDetails{
		RecipientName:          recipient.Name,
		RecipientAccountNumber: recipient.AccountNumber,
		Amount:                 input.Amount,
		Name:                   input.Name,
	}); err != nil {
		uc.logger.Warn().Err(err).
			Str("sender_id", sender.ID).
			Msg("transfer code notification failed")
	}

	uc.audit.Record(ctx, sender.ID, domain.AuditActionTransferInitiate, "transfer_verification", domain.JSON{
		"verificationId":         verification.ID,
		"amount":                 input.Amount.String(),
		"recipientAccountNumber": recipient.AccountNumber,
	})

	return &InitiateTransferResult{
		RecipientName:          recipient.Name,
		RecipientAccountNumber: recipient.AccountNumber,
		Amount:                 input.Amount,
		ExpiresAt:              verification.ExpiresAt,
	}, nil
}

// issueCode supersedes prior unused verifications and persists the new one
// in a single atomic unit, retrying code generation on active-code
// collisions. Returns how many prior codes were superseded.
func (uc *TransferUseCase) issueCode(ctx context.Context, verification *domain.TransferVerification, now time.Time) (int64, error) {
	for attempt := 0; attempt < maxCodeGenerationAttempts; attempt++ {
		code, err := uc.codeGen.Generate(uc.codeLength)
		if err != nil {
			return 0, err
		}

		verification.Code = code

		var superseded int64

		err = uc.retrier.Retry(ctx, func() error {
			tx, txErr := uc.txManager.Begin(ctx)
			if txErr != nil {
				return txErr
			}
			defer tx.Rollback(ctx)

			superseded, txErr = uc.verificationRepo.InvalidateActive(ctx, tx, verification.AccountID, now)
			if txErr != nil {
				return txErr
			}

			if txErr := uc.verificationRepo.Create(ctx, tx, verification); txErr != nil {
				return txErr
			}

			return tx.Commit(ctx)
		})
		if err == nil {
			return superseded, nil
		}

		if !errors.Is(err, domain.ErrDuplicateCode) {
			return 0, err
		}
	}

	return 0, domain.ErrTransferCodeExhausted
}

// ConfirmTransferInput represents input for confirming a transfer.
type ConfirmTransferInput struct {
	SenderID string
	Code     string
}

// ConfirmTransferResult is the settlement summary.
type ConfirmTransferResult struct {
	Amount                 decimal.Decimal
	RecipientName          string
	RecipientAccountNumber string
	SenderTransactionID    string
	RecipientTransactionID string

	recipientID string
}

// Confirm settles the transfer authorized by code. Everything inside the
// atomic unit commits or rolls back together: both balances, both
// transaction records and the used flag on the verification.
func (uc *TransferUseCase) Confirm(ctx context.Context, input ConfirmTransferInput) (*ConfirmTransferResult, error) {
	if err := domain.ValidateTransferCode(input.Code, uc.codeLength); err != nil {
		return nil, err
	}

	// Cheap pre-check before opening a transaction.
	if _, err := uc.verificationRepo.GetActiveByCode(ctx, input.SenderID, input.Code, uc.clock.Now()); err != nil {
		uc.countTransferError(err)
		return nil, err
	}

	start := time.Now()

	var result *ConfirmTransferResult

	err := uc.retrier.Retry(ctx, func() error {
		var txErr error
		result, txErr = uc.settle(ctx, input)
		return txErr
	})
	if err != nil {
		uc.countTransferError(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersConfirmed.Inc()
		uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
	}

	uc.audit.Record(ctx, input.SenderID, domain.AuditActionTransferSent, "transaction", domain.JSON{
		"transactionId":          result.SenderTransactionID,
		"amount":                 result.Amount.String(),
		"recipientAccountNumber": result.RecipientAccountNumber,
		"recipientName":          result.RecipientName,
	})
	uc.audit.Record(ctx, result.recipientID, domain.AuditActionTransferReceived, "transaction", domain.JSON{
		"transactionId": result.RecipientTransactionID,
		"amount":        result.Amount.String(),
	})

	return result, nil
}

// countTransferError records a failed confirmation by its classified code.
// Expired, used and nonexistent codes all classify as
// INVALID_OR_EXPIRED_CODE; the response never distinguishes them either.
func (uc *TransferUseCase) countTransferError(err error) {
	if uc.metrics != nil {
		uc.metrics.TransferErrors.WithLabelValues(string(domain.CodeOf(err))).Inc()
	}
}

func (uc *TransferUseCase) settle(ctx context.Context, input ConfirmTransferInput) (*ConfirmTransferResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := uc.clock.Now()

	// Lock the verification row first so two concurrent confirms of the
	// same code serialize here.
	verification, err := uc.verificationRepo.GetActiveByCodeForUpdate(ctx, tx, input.SenderID, input.Code, now)
	if err != nil {
		return nil, err
	}

	// The recipient is re-loaded by the stored account number, never
	// re-resolved by identifier: a nickname reassigned between initiate and
	// confirm must not redirect funds.
	recipient, err := uc.accountRepo.GetByAccountNumber(ctx, verification.RecipientAccountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrRecipientNotFound
		}

		return nil, err
	}

	// Lock both account rows in sorted ID order to prevent deadlocks
	// between opposing transfers.
	ids := []string{input.SenderID, recipient.ID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	var sender *domain.Account
	recipient = nil
	for _, a := range accounts {
		switch a.ID {
		case input.SenderID:
			sender = a
		default:
			recipient = a
		}
	}

	if sender == nil {
		return nil, domain.ErrAccountNotFound
	}

	if recipient == nil {
		return nil, domain.ErrRecipientNotFound
	}

	if err := sender.ValidateMutable(); err != nil {
		return nil, err
	}

	if err := recipient.ValidateMutable(); err != nil {
		return nil, err
	}

	// Funds can have moved elsewhere between initiate and confirm.
	if err := sender.ValidateDebit(verification.Amount); err != nil {
		return nil, err
	}

	senderTransaction := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		AccountID: sender.ID,
		Name:      domain.TransferToLabel(verification.RecipientName, verification.Name),
		Amount:    verification.Amount,
		Type:      domain.TransactionTypeWithdraw,
		CreatedAt: now,
	}

	if err := uc.transactionRepo.Create(ctx, tx, senderTransaction); err != nil {
		return nil, err
	}

	recipientTransaction := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		AccountID: recipient.ID,
		Name:      domain.TransferFromLabel(sender.Name, verification.Name),
		Amount:    verification.Amount,
		Type:      domain.TransactionTypeDeposit,
		CreatedAt: now,
	}

	if err := uc.transactionRepo.Create(ctx, tx, recipientTransaction); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, sender.ID, sender.ApplyDebit(verification.Amount), now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, recipient.ID, recipient.ApplyCredit(verification.Amount), now); err != nil {
		return nil, err
	}

	if err := uc.verificationRepo.MarkUsed(ctx, tx, verification.ID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ConfirmTransferResult{
		Amount:                 verification.Amount,
		RecipientName:          verification.RecipientName,
		RecipientAccountNumber: verification.RecipientAccountNumber,
		SenderTransactionID:    senderTransaction.ID,
		RecipientTransactionID: recipientTransaction.ID,
		recipientID:            recipient.ID,
	}, nil
}

// ListTransferHistoryInput represents input for listing transfer legs.
type ListTransferHistoryInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransferHistory lists sent and received transfer legs, newest first.
func (uc *TransferUseCase) ListTransferHistory(ctx context.Context, input ListTransferHistoryInput) (*TransactionPage, error) {
	if input.Limit <= 0 {
		input.Limit = 10
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	items, total, err := uc.transactionRepo.ListTransferLegs(ctx, input.AccountID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &TransactionPage{Items: items, Total: total}, nil
}

// PurgeExpiredVerifications deletes verifications expired before cutoff.
// Optional maintenance; correctness never depends on it.
func (uc *TransferUseCase) PurgeExpiredVerifications(ctx context.Context, olderThan time.Duration) (int64, error) {
	return uc.verificationRepo.DeleteExpiredBefore(ctx, uc.clock.Now().Add(-olderThan))
}
