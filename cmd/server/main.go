package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/vaultbank/bankcore/internal/adapter/http"
	"github.com/vaultbank/bankcore/internal/adapter/http/handler"
	"github.com/vaultbank/bankcore/internal/adapter/http/middleware"
	postgresRepo "github.com/vaultbank/bankcore/internal/adapter/repository/postgres"
	redisRepo "github.com/vaultbank/bankcore/internal/adapter/repository/redis"
	"github.com/vaultbank/bankcore/internal/infrastructure/config"
	"github.com/vaultbank/bankcore/internal/infrastructure/logger"
	"github.com/vaultbank/bankcore/internal/infrastructure/metrics"
	"github.com/vaultbank/bankcore/internal/infrastructure/notifier"
	"github.com/vaultbank/bankcore/internal/infrastructure/postgres"
	"github.com/vaultbank/bankcore/internal/infrastructure/redis"
	"github.com/vaultbank/bankcore/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = logg

	policy, err := buildLimitPolicy(cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("invalid limit configuration")
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsPath(), logg); err != nil {
		logg.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	logg.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	logg.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	verificationRepo := postgresRepo.NewVerificationRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient, m)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(logg)

	clock := usecase.SystemClock{}
	audit := usecase.NewAuditRecorder(auditRepo, idGen, clock, logg, m)
	codeGen := usecase.NewRandomCodeGenerator()
	notify := notifier.New(notifier.Config{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}, logg)

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, audit, idGen, clock, m)
	transactionUC := usecase.NewTransactionUseCase(
		txManager, accountRepo, transactionRepo, audit, policy, idGen, clock, retrier, m)
	transferUC := usecase.NewTransferUseCase(usecase.TransferConfig{
		TxManager:        txManager,
		AccountRepo:      accountRepo,
		TransactionRepo:  transactionRepo,
		VerificationRepo: verificationRepo,
		Audit:            audit,
		Notifier:         notify,
		Policy:           policy,
		IDGen:            idGen,
		CodeGen:          codeGen,
		Clock:            clock,
		Retrier:          retrier,
		Logger:           logg,
		Metrics:          m,
		CodeTTL:          cfg.TransferCodeTTL,
		CodeLength:       cfg.TransferCodeLength,
	})
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	poolStatsDone := make(chan struct{})
	go reportPoolStats(pool, m, poolStatsDone)

	// HTTP surface
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		TransferHandler:    handler.NewTransferHandler(transferUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        middleware.NewRateLimiter(100, 200, m),
		LoggingMiddleware:  middleware.NewLoggingMiddleware(logg),
		MetricsMiddleware:  middleware.NewMetricsMiddleware(m),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		logg.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	close(poolStatsDone)
	logg.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logg.Info().Msg("server stopped")
}

// reportPoolStats keeps the connection gauge current until done closes.
func reportPoolStats(pool *pgxpool.Pool, m *metrics.Metrics, done <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.DBConnections.Set(float64(pool.Stat().TotalConns()))
		}
	}
}

// buildLimitPolicy resolves the configured ceilings and bank timezone.
func buildLimitPolicy(cfg *config.Config) (usecase.LimitPolicy, error) {
	perTx, err := cfg.PerTransactionCeiling()
	if err != nil {
		return usecase.LimitPolicy{}, err
	}

	daily, err := cfg.DailyCeiling()
	if err != nil {
		return usecase.LimitPolicy{}, err
	}

	location, err := cfg.BankLocation()
	if err != nil {
		return usecase.LimitPolicy{}, err
	}

	return usecase.LimitPolicy{
		PerTxCeiling: perTx,
		DailyCeiling: daily,
		Location:     location,
	}, nil
}

// migrationsPath resolves the migrations directory, overridable for
// containerized layouts.
func migrationsPath() string {
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		return path
	}

	return "migrations"
}
