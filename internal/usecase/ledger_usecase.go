package usecase

import (
	"context"
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// ConsistencyReport is the result of checking every account's denormalized
// balance against the signed fold of its transactions.
type ConsistencyReport struct {
	Consistent bool
	Mismatches []*BalanceMismatch
}

// CheckConsistency verifies the balance invariant across all accounts. Any
// mismatch is a correctness bug, not an operational condition.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	mismatches, err := uc.ledgerRepo.FindBalanceMismatches(ctx)
	if err != nil {
		return nil, err
	}

	return &ConsistencyReport{
		Consistent: len(mismatches) == 0,
		Mismatches: mismatches,
	}, nil
}
