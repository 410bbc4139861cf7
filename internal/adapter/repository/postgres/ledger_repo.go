package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaultbank/bankcore/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// FindBalanceMismatches compares every denormalized balance against the
// signed fold of the account's ledger entries and returns the accounts where
// the two disagree.
func (r *LedgerRepository) FindBalanceMismatches(ctx context.Context) ([]*usecase.BalanceMismatch, error) {
	query := `
		SELECT a.id,
		       a.account_number,
		       a.balance,
		       COALESCE(SUM(
		           CASE WHEN t.trans_type = 'WITHDRAW' THEN -t.amount ELSE t.amount END
		       ), 0) AS transactions_sum
		FROM accounts a
		LEFT JOIN transactions t ON t.account_id = a.id
		GROUP BY a.id, a.account_number, a.balance
		HAVING a.balance <> COALESCE(SUM(
		    CASE WHEN t.trans_type = 'WITHDRAW' THEN -t.amount ELSE t.amount END
		), 0)
		ORDER BY a.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mismatches []*usecase.BalanceMismatch
	for rows.Next() {
		var (
			m       usecase.BalanceMismatch
			balance pgtype.Numeric
			sum     pgtype.Numeric
		)

		if err := rows.Scan(&m.AccountID, &m.AccountNumber, &balance, &sum); err != nil {
			return nil, err
		}

		m.Balance = numericToDecimal(balance)
		m.TransactionsSum = numericToDecimal(sum)
		mismatches = append(mismatches, &m)
	}

	return mismatches, rows.Err()
}
