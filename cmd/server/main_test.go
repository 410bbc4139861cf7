package main

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/infrastructure/config"
)

func TestMigrationsPath(t *testing.T) {
	orig := os.Getenv("MIGRATIONS_PATH")
	defer os.Setenv("MIGRATIONS_PATH", orig)

	os.Unsetenv("MIGRATIONS_PATH")
	if got := migrationsPath(); got != "migrations" {
		t.Fatalf("expected default migrations, got %s", got)
	}

	os.Setenv("MIGRATIONS_PATH", "/srv/migrations")
	if got := migrationsPath(); got != "/srv/migrations" {
		t.Fatalf("expected overridden path, got %s", got)
	}
}

func TestBuildLimitPolicy(t *testing.T) {
	cfg := &config.Config{
		MaxTransactionAmount: "20000000",
		DailyWithdrawalLimit: "500000000",
		BankTimezone:         "Asia/Ho_Chi_Minh",
	}

	policy, err := buildLimitPolicy(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !policy.PerTxCeiling.Equal(decimal.NewFromInt(20000000)) {
		t.Fatalf("expected per-tx ceiling 20000000, got %s", policy.PerTxCeiling)
	}
	if !policy.DailyCeiling.Equal(decimal.NewFromInt(500000000)) {
		t.Fatalf("expected daily ceiling 500000000, got %s", policy.DailyCeiling)
	}

	// Fixed-offset zone; the window math depends on it.
	_, offset := time.Date(2026, 3, 10, 0, 0, 0, 0, policy.Location).Zone()
	if offset != 7*60*60 {
		t.Fatalf("expected +07:00 offset, got %d", offset)
	}
}

func TestBuildLimitPolicy_InvalidCeiling(t *testing.T) {
	cfg := &config.Config{
		MaxTransactionAmount: "not-a-number",
		DailyWithdrawalLimit: "500000000",
		BankTimezone:         "UTC",
	}

	if _, err := buildLimitPolicy(cfg); err == nil {
		t.Fatal("expected error for malformed ceiling")
	}
}
