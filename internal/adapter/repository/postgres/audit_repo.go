package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaultbank/bankcore/internal/domain"
)

// AuditRepository implements audit log persistence.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts a new audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	var metaJSON []byte
	if log.Meta != nil {
		var err error
		metaJSON, err = json.Marshal(log.Meta)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_logs (id, actor_id, action, resource, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.ActorID,
		log.Action,
		log.Resource,
		metaJSON,
		timeToPgTimestamptz(log.CreatedAt),
	)

	return err
}

// List retrieves audit logs with filtering, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, resource, meta, created_at
		FROM audit_logs
		WHERE 1=1
	`
	var args []any

	if filter.ActorID != "" {
		args = append(args, filter.ActorID)
		query += fmt.Sprintf(` AND actor_id = $%d`, len(args))
	}

	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(` AND action = $%d`, len(args))
	}

	if filter.Resource != "" {
		args = append(args, filter.Resource)
		query += fmt.Sprintf(` AND resource = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			log       domain.AuditLog
			metaJSON  []byte
			createdAt pgtype.Timestamptz
		)

		if err := rows.Scan(
			&log.ID,
			&log.ActorID,
			&log.Action,
			&log.Resource,
			&metaJSON,
			&createdAt,
		); err != nil {
			return nil, err
		}

		if metaJSON != nil {
			_ = json.Unmarshal(metaJSON, &log.Meta)
		}

		log.CreatedAt = createdAt.Time
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
