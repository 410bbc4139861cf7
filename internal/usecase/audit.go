package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vaultbank/bankcore/internal/domain"
	"github.com/vaultbank/bankcore/internal/infrastructure/metrics"
)

// AuditRecorder writes audit entries best-effort: a failed write is logged
// and swallowed so it can never roll back the primary operation.
type AuditRecorder struct {
	repo    AuditRepository
	idGen   IDGenerator
	clock   Clock
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewAuditRecorder creates a new AuditRecorder.
func NewAuditRecorder(repo AuditRepository, idGen IDGenerator, clock Clock, logger zerolog.Logger, metrics *metrics.Metrics) *AuditRecorder {
	return &AuditRecorder{
		repo:    repo,
		idGen:   idGen,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Record appends an audit entry for a mutating operation.
func (r *AuditRecorder) Record(ctx context.Context, actorID, action, resource string, meta domain.JSON) {
	if r == nil || r.repo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:        r.idGen.Generate(),
		ActorID:   actorID,
		Action:    action,
		Resource:  resource,
		Meta:      meta,
		CreatedAt: r.clock.Now(),
	}

	if err := r.repo.Create(ctx, log); err != nil {
		r.logger.Warn().Err(err).
			Str("action", action).
			Str("actor_id", actorID).
			Msg("audit write failed")

		return
	}

	if r.metrics != nil {
		r.metrics.AuditLogsCreated.WithLabelValues(action).Inc()
	}
}
