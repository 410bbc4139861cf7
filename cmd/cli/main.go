package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	postgresRepo "github.com/vaultbank/bankcore/internal/adapter/repository/postgres"
	"github.com/vaultbank/bankcore/internal/infrastructure/config"
	"github.com/vaultbank/bankcore/internal/infrastructure/logger"
	"github.com/vaultbank/bankcore/internal/infrastructure/postgres"
	"github.com/vaultbank/bankcore/internal/usecase"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankcore-cli",
		Short: "Bankcore CLI tool",
		Long:  `A command line interface for operating the bankcore ledger service.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the bankcore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())
	rootCmd.AddCommand(ledgerCmd)

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}
	accountCmd.AddCommand(balanceCmd(), allowanceCmd())
	rootCmd.AddCommand(accountCmd)

	maintenanceCmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Maintenance operations (direct database access)",
	}
	maintenanceCmd.AddCommand(purgeCodesCmd())
	rootCmd.AddCommand(maintenanceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that every balance matches its transaction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := getJSON(baseURL + "/api/v1/ledger/consistency")
			if err != nil {
				return err
			}

			if consistent, ok := result["consistent"].(bool); ok && consistent {
				fmt.Println("Consistency check PASSED")
				return nil
			}

			fmt.Println("Consistency check FAILED")
			printJSON(result["mismatches"])

			return fmt.Errorf("ledger inconsistent")
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := getJSON(baseURL + "/api/v1/accounts/" + url.PathEscape(args[0]) + "/balance")
			if err != nil {
				return err
			}

			printJSON(result)

			return nil
		},
	}
}

func allowanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allowance <account-id> <amount>",
		Short: "Check whether a withdrawal would pass the limit policy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := getJSON(allowanceURL(baseURL, args[0], args[1]))
			if err != nil {
				return err
			}

			printJSON(result)

			return nil
		},
	}
}

func purgeCodesCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge-codes",
		Short: "Delete long-expired transfer verification codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			transferUC := usecase.NewTransferUseCase(usecase.TransferConfig{
				VerificationRepo: postgresRepo.NewVerificationRepository(pool),
				Clock:            usecase.SystemClock{},
				Logger:           logg,
			})

			purged, err := transferUC.PurgeExpiredVerifications(ctx, olderThan)
			if err != nil {
				return err
			}

			fmt.Printf("Purged %d expired verification(s)\n", purged)

			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Purge codes expired at least this long ago")

	return cmd
}

// allowanceURL builds the withdrawal allowance query URL.
func allowanceURL(base, accountID, amount string) string {
	return base + "/api/v1/accounts/" + url.PathEscape(accountID) +
		"/withdrawals/allowance?amount=" + url.QueryEscape(amount)
}

func getJSON(target string) (map[string]any, error) {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(target)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func printJSON(v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render: %v\n", err)
		return
	}

	fmt.Println(string(encoded))
}
