package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaultbank/bankcore/internal/adapter/http/handler"
	"github.com/vaultbank/bankcore/internal/adapter/http/middleware"
	"github.com/vaultbank/bankcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	TransferHandler    *handler.TransferHandler
	LedgerHandler      *handler.LedgerHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
	LoggingMiddleware  *middleware.LoggingMiddleware
	MetricsMiddleware  *middleware.MetricsMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Wrap)
	}

	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware.Wrap)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", IdempotencyKeyHeader},
		MaxAge:         300,
	}))

	// Health and telemetry
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/resolve", cfg.AccountHandler.ResolveRecipient)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.AccountHandler.GetBalance)
			r.Put("/{id}/nickname", cfg.AccountHandler.SetNickname)

			r.Post("/{id}/deposits", cfg.TransactionHandler.Deposit)
			r.Post("/{id}/withdrawals", cfg.TransactionHandler.Withdraw)
			r.Get("/{id}/withdrawals/allowance", cfg.TransactionHandler.CanWithdraw)
			r.Get("/{id}/transactions", cfg.TransactionHandler.List)

			r.Post("/{id}/transfers", cfg.TransferHandler.Initiate)
			r.Post("/{id}/transfers/confirm", cfg.TransferHandler.Confirm)
			r.Get("/{id}/transfers", cfg.TransferHandler.History)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}

// IdempotencyKeyHeader re-exports the middleware header name for wiring.
const IdempotencyKeyHeader = middleware.IdempotencyKeyHeader
