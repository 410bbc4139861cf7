package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/infrastructure/metrics"
)

// maxAccountNumberAttempts bounds the collision-checked generation loop.
const maxAccountNumberAttempts = 10

// AccountUseCase handles account identity: creation, account-number
// generation, nicknames and recipient resolution.
type AccountUseCase struct {
	accountRepo AccountRepository
	audit       *AuditRecorder
	idGen       IDGenerator
	clock       Clock
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, audit *AuditRecorder, idGen IDGenerator, clock Clock, metrics *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		audit:       audit,
		idGen:       idGen,
		clock:       clock,
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name  string
	Email string
}

// CreateAccount creates an active account with balance zero and a generated
// unique account number.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: account name cannot be empty", domain.ErrValidation)
	}

	number, err := uc.generateAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	account := &domain.Account{
		ID:            uc.idGen.Generate(),
		Name:          name,
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		AccountNumber: number,
		Status:        domain.AccountStatusActive,
		Balance:       decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, account.ID, domain.AuditActionAccountCreate, "account", domain.JSON{
		"accountId":     account.ID,
		"accountNumber": account.AccountNumber,
	})

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// generateAccountNumber produces a unique 10-digit number starting with 1,
// collision-checked against the directory.
func (uc *AccountUseCase) generateAccountNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAccountNumberAttempts; attempt++ {
		number := fmt.Sprintf("1%09d", rand.Intn(1_000_000_000))

		_, err := uc.accountRepo.GetByAccountNumber(ctx, number)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return number, nil
		}

		if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("could not generate a unique account number")
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetBalance returns the denormalized balance for O(1) reads.
func (uc *AccountUseCase) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// SetNickname sets the transfer nickname. Settable exactly once and unique
// across accounts.
func (uc *AccountUseCase) SetNickname(ctx context.Context, id, nickname string) (*domain.Account, error) {
	nickname = strings.TrimSpace(nickname)

	if err := domain.ValidateNickname(nickname); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.Nickname != nil {
		return nil, domain.ErrNicknameSet
	}

	other, err := uc.accountRepo.GetByNickname(ctx, nickname)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	if other != nil && other.ID != id {
		return nil, domain.ErrNicknameTaken
	}

	if err := uc.accountRepo.SetNickname(ctx, id, nickname, uc.clock.Now()); err != nil {
		return nil, err
	}

	account.Nickname = &nickname

	uc.audit.Record(ctx, id, domain.AuditActionSetNickname, "account", domain.JSON{
		"accountId": id,
		"nickname":  nickname,
	})

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("set_nickname").Inc()
	}

	return account, nil
}

// RecipientInfo is the display subset returned when resolving a transfer
// recipient.
type RecipientInfo struct {
	Name          string
	AccountNumber string
}

// ResolveRecipient looks up an account by account number or nickname.
func (uc *AccountUseCase) ResolveRecipient(ctx context.Context, identifier string) (*RecipientInfo, error) {
	account, err := uc.accountRepo.FindByAccountNumberOrNickname(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrRecipientNotFound
		}

		return nil, err
	}

	return &RecipientInfo{
		Name:          account.Name,
		AccountNumber: account.AccountNumber,
	}, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}
