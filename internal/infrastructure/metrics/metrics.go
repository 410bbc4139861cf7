package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	DepositsCreated    prometheus.Counter
	WithdrawalsCreated prometheus.Counter
	WithdrawalsDenied  *prometheus.CounterVec
	IdempotentReplays  prometheus.Counter
	TransactionAmount  prometheus.Histogram

	// Transfer metrics
	TransfersInitiated prometheus.Counter
	TransfersConfirmed prometheus.Counter
	CodesSuperseded    prometheus.Counter
	TransferErrors     *prometheus.CounterVec
	TransferDuration   prometheus.Histogram

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		DepositsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_deposits_created_total",
			Help: "Total number of deposits committed",
		}),
		WithdrawalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_withdrawals_created_total",
			Help: "Total number of withdrawals committed",
		}),
		WithdrawalsDenied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_withdrawals_denied_total",
				Help: "Total number of withdrawals denied by the limit policy",
			},
			[]string{"reason"},
		),
		IdempotentReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_idempotent_replays_total",
			Help: "Total number of mutations returned from replay",
		}),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankcore_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1000, 10000, 100000, 1000000, 10000000, 100000000},
		}),

		// Transfer metrics
		TransfersInitiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transfers_initiated_total",
			Help: "Total number of transfer verifications issued",
		}),
		TransfersConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transfers_confirmed_total",
			Help: "Total number of transfers settled",
		}),
		CodesSuperseded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transfer_codes_superseded_total",
			Help: "Total number of transfer codes invalidated by a newer initiate",
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankcore_transfer_duration_seconds",
			Help:    "Duration of transfer settlement",
			Buckets: prometheus.DefBuckets,
		}),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankcore_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bankcore_db_connections",
			Help: "Current number of database connections",
		}),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action"},
		),
	}
}
