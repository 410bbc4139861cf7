package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/usecase"
)

const verificationColumns = `id, account_id, code, recipient_account_number, recipient_name, amount, name, is_used, used_at, expires_at, created_at`

// VerificationRepository implements usecase.VerificationRepository.
type VerificationRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRepository creates a new VerificationRepository.
func NewVerificationRepository(pool *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

// Create inserts a pending verification inside a transaction. A unique
// violation on the active-code index surfaces as domain.ErrDuplicateCode so
// the caller can regenerate.
func (r *VerificationRepository) Create(ctx context.Context, tx usecase.Transaction, v *domain.TransferVerification) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transfer_verifications (` + verificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var usedAt pgtype.Timestamptz
	if v.UsedAt != nil {
		usedAt = timeToPgTimestamptz(*v.UsedAt)
	}

	_, err := pgxTx.Exec(ctx, query,
		v.ID,
		v.AccountID,
		v.Code,
		v.RecipientAccountNumber,
		v.RecipientName,
		decimalToNumeric(v.Amount),
		v.Name,
		v.IsUsed,
		usedAt,
		timeToPgTimestamptz(v.ExpiresAt),
		timeToPgTimestamptz(v.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}

		return err
	}

	return nil
}

// GetActiveByCode finds the unused, unexpired verification matching code for
// the account. Missing, used and expired all collapse into
// domain.ErrInvalidOrExpiredCode.
func (r *VerificationRepository) GetActiveByCode(ctx context.Context, accountID, code string, now time.Time) (*domain.TransferVerification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM transfer_verifications
		WHERE account_id = $1 AND code = $2 AND NOT is_used AND expires_at > $3
	`

	return scanActiveVerification(r.pool.QueryRow(ctx, query, accountID, code, timeToPgTimestamptz(now)))
}

// GetActiveByCodeForUpdate is GetActiveByCode with a FOR UPDATE lock, so two
// concurrent confirms of the same code serialize on the row.
func (r *VerificationRepository) GetActiveByCodeForUpdate(ctx context.Context, tx usecase.Transaction, accountID, code string, now time.Time) (*domain.TransferVerification, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT ` + verificationColumns + `
		FROM transfer_verifications
		WHERE account_id = $1 AND code = $2 AND NOT is_used AND expires_at > $3
		FOR UPDATE
	`

	return scanActiveVerification(pgxTx.QueryRow(ctx, query, accountID, code, timeToPgTimestamptz(now)))
}

// InvalidateActive marks every unused verification of the account as used.
// Called before inserting a superseding verification.
func (r *VerificationRepository) InvalidateActive(ctx context.Context, tx usecase.Transaction, accountID string, usedAt time.Time) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE transfer_verifications
		SET is_used = TRUE, used_at = $2
		WHERE account_id = $1 AND NOT is_used
	`

	tag, err := pgxTx.Exec(ctx, query, accountID, timeToPgTimestamptz(usedAt))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// MarkUsed consumes a verification. The unused guard makes consumption
// single-shot even without the row lock.
func (r *VerificationRepository) MarkUsed(ctx context.Context, tx usecase.Transaction, id string, usedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE transfer_verifications
		SET is_used = TRUE, used_at = $2
		WHERE id = $1 AND NOT is_used
	`

	tag, err := pgxTx.Exec(ctx, query, id, timeToPgTimestamptz(usedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVerificationNotFound
	}

	return nil
}

// DeleteExpiredBefore removes verifications that expired before cutoff.
func (r *VerificationRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM transfer_verifications WHERE expires_at < $1`

	tag, err := r.pool.Exec(ctx, query, timeToPgTimestamptz(cutoff))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func scanActiveVerification(row pgx.Row) (*domain.TransferVerification, error) {
	var (
		v         domain.TransferVerification
		amount    pgtype.Numeric
		usedAt    pgtype.Timestamptz
		expiresAt pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&v.ID,
		&v.AccountID,
		&v.Code,
		&v.RecipientAccountNumber,
		&v.RecipientName,
		&amount,
		&v.Name,
		&v.IsUsed,
		&usedAt,
		&expiresAt,
		&createdAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidOrExpiredCode
		}

		return nil, err
	}

	v.Amount = numericToDecimal(amount)
	if usedAt.Valid {
		v.UsedAt = &usedAt.Time
	}
	v.ExpiresAt = expiresAt.Time
	v.CreatedAt = createdAt.Time

	return &v, nil
}
