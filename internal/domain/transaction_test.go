package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name        string
		transaction Transaction
		wantErr     error
	}{
		{
			name:        "valid deposit",
			transaction: Transaction{Amount: decimal.NewFromInt(100), Type: TransactionTypeDeposit},
		},
		{
			name:        "valid withdrawal",
			transaction: Transaction{Amount: decimal.NewFromInt(100), Type: TransactionTypeWithdraw},
		},
		{
			name:        "zero amount",
			transaction: Transaction{Amount: decimal.Zero, Type: TransactionTypeDeposit},
			wantErr:     ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			transaction: Transaction{Amount: decimal.NewFromInt(-100), Type: TransactionTypeDeposit},
			wantErr:     ErrInvalidAmount,
		},
		{
			name:        "unknown type",
			transaction: Transaction{Amount: decimal.NewFromInt(100), Type: "REVERSAL"},
			wantErr:     ErrInvalidTransactionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transaction.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransaction_Signed(t *testing.T) {
	deposit := Transaction{Amount: decimal.NewFromInt(100), Type: TransactionTypeDeposit}
	if got := deposit.Signed(); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("deposit Signed = %s, want 100", got)
	}

	withdrawal := Transaction{Amount: decimal.NewFromInt(100), Type: TransactionTypeWithdraw}
	if got := withdrawal.Signed(); !got.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("withdrawal Signed = %s, want -100", got)
	}
}

func TestTransaction_Category(t *testing.T) {
	tests := []struct {
		name        string
		transaction Transaction
		want        TransactionCategory
	}{
		{
			name:        "plain deposit",
			transaction: Transaction{Name: "Paycheck", Type: TransactionTypeDeposit},
			want:        CategoryDeposit,
		},
		{
			name:        "plain withdrawal",
			transaction: Transaction{Name: "Rent", Type: TransactionTypeWithdraw},
			want:        CategoryWithdraw,
		},
		{
			name:        "sender leg",
			transaction: Transaction{Name: TransferToLabel("Bob", "Lunch"), Type: TransactionTypeWithdraw},
			want:        CategoryTransferSent,
		},
		{
			name:        "recipient leg",
			transaction: Transaction{Name: TransferFromLabel("Alice", "Lunch"), Type: TransactionTypeDeposit},
			want:        CategoryTransferReceived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.transaction.Category(); got != tt.want {
				t.Errorf("Category = %s, want %s", got, tt.want)
			}

			wantLeg := tt.want == CategoryTransferSent || tt.want == CategoryTransferReceived
			if got := tt.transaction.IsTransferLeg(); got != wantLeg {
				t.Errorf("IsTransferLeg = %v, want %v", got, wantLeg)
			}
		})
	}
}

func TestTransferLabels(t *testing.T) {
	if got := TransferToLabel("Bob", "Lunch money"); got != "Transfer to Bob - Lunch money" {
		t.Errorf("TransferToLabel = %q", got)
	}

	if got := TransferFromLabel("Alice", "Lunch money"); got != "Transfer from Alice - Lunch money" {
		t.Errorf("TransferFromLabel = %q", got)
	}
}
