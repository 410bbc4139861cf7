package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/usecase"
)

const transactionColumns = `id, account_id, name, amount, trans_type, client_request_id, created_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a ledger entry inside a transaction. A unique violation on
// the client request index surfaces as domain.ErrDuplicateRequest.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgxTx.Exec(ctx, query,
		t.ID,
		t.AccountID,
		t.Name,
		decimalToNumeric(t.Amount),
		string(t.Type),
		t.ClientRequestID,
		timeToPgTimestamptz(t.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRequest
		}

		return err
	}

	return nil
}

// GetByID retrieves a ledger entry by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransactionRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s not found", id)
		}

		return nil, err
	}

	return t, nil
}

// GetByClientRequestID looks up a prior entry for idempotent replay. Returns
// (nil, nil) when no entry carries the key.
func (r *TransactionRepository) GetByClientRequestID(ctx context.Context, accountID, clientRequestID string, typ domain.TransactionType) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND client_request_id = $2 AND trans_type = $3
	`

	t, err := scanTransactionRow(r.pool.QueryRow(ctx, query, accountID, clientRequestID, string(typ)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return t, nil
}

// SumWithdrawalsInWindow sums withdrawal magnitudes inside the daily window,
// endpoints inclusive. Transfer sender legs are withdrawals and count too.
// With a non-nil tx the sum runs inside that transaction, so a withdrawal
// re-checking the daily ceiling under the account row lock sees every entry
// committed before the lock was granted.
func (r *TransactionRepository) SumWithdrawalsInWindow(ctx context.Context, tx usecase.Transaction, accountID string, window domain.DayWindow) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1
		  AND trans_type = $2
		  AND created_at BETWEEN $3 AND $4
	`

	args := []any{
		accountID,
		string(domain.TransactionTypeWithdraw),
		timeToPgTimestamptz(window.Start),
		timeToPgTimestamptz(window.End),
	}

	var row pgx.Row
	if tx != nil {
		row = tx.(*Tx).PgxTx().QueryRow(ctx, query, args...)
	} else {
		row = r.pool.QueryRow(ctx, query, args...)
	}

	var sum pgtype.Numeric
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// ListByAccount lists an account's ledger entries, newest first, with
// optional type, time range and amount range filters.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, filter usecase.TransactionFilter) ([]*domain.Transaction, int64, error) {
	where := ` WHERE account_id = $1`
	args := []any{accountID}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		where += fmt.Sprintf(` AND trans_type = $%d`, len(args))
	}

	if filter.From != nil {
		args = append(args, timeToPgTimestamptz(*filter.From))
		where += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}

	if filter.To != nil {
		args = append(args, timeToPgTimestamptz(*filter.To))
		where += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}

	if filter.MinAmount != nil {
		args = append(args, decimalToNumeric(*filter.MinAmount))
		where += fmt.Sprintf(` AND amount >= $%d`, len(args))
	}

	if filter.MaxAmount != nil {
		args = append(args, decimalToNumeric(*filter.MaxAmount))
		where += fmt.Sprintf(` AND amount <= $%d`, len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, limitPos, offsetPos)

	items, err := r.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListTransferLegs lists the entries created by settled transfers, newest
// first. Legs are recognized by the label convention.
func (r *TransactionRepository) ListTransferLegs(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, int64, error) {
	where := `
		WHERE account_id = $1
		  AND (name LIKE 'Transfer to %' OR name LIKE 'Transfer from %')
	`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	items, err := r.queryTransactions(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Transaction
	for rows.Next() {
		t, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}

		items = append(items, t)
	}

	return items, rows.Err()
}

func scanTransactionRow(row pgx.Row) (*domain.Transaction, error) {
	var (
		t         domain.Transaction
		amount    pgtype.Numeric
		transType string
		createdAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Name,
		&amount,
		&transType,
		&t.ClientRequestID,
		&createdAt,
	); err != nil {
		return nil, err
	}

	t.Amount = numericToDecimal(amount)
	t.Type = domain.TransactionType(transType)
	t.CreatedAt = createdAt.Time

	return &t, nil
}
