package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromInt(1)); err != nil {
		t.Errorf("positive amount: %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.01")); err != nil {
		t.Errorf("fractional amount: %v", err)
	}

	if err := ValidateAmount(decimal.Zero); err != ErrInvalidAmount {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-1)); err != ErrInvalidAmount {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestValidateLabel(t *testing.T) {
	if err := ValidateLabel(""); err != nil {
		t.Errorf("empty label: %v", err)
	}

	if err := ValidateLabel(strings.Repeat("x", MaxLabelLength)); err != nil {
		t.Errorf("max-length label: %v", err)
	}

	if err := ValidateLabel(strings.Repeat("x", MaxLabelLength+1)); err == nil {
		t.Error("overlong label accepted")
	}
}

func TestValidateNickname(t *testing.T) {
	valid := []string{"abc", "bobby_b", "User_123", strings.Repeat("a", MaxNicknameLength)}
	for _, nickname := range valid {
		if err := ValidateNickname(nickname); err != nil {
			t.Errorf("nickname %q rejected: %v", nickname, err)
		}
	}

	invalid := []string{"", "ab", strings.Repeat("a", MaxNicknameLength+1), "has space", "bad-dash", "bad!char"}
	for _, nickname := range invalid {
		if err := ValidateNickname(nickname); err == nil {
			t.Errorf("nickname %q accepted", nickname)
		}
	}
}

func TestValidateAccountNumber(t *testing.T) {
	if err := ValidateAccountNumber("1234567890"); err != nil {
		t.Errorf("valid number rejected: %v", err)
	}

	invalid := []string{"", "123456789", "12345678901", "0234567890", "2234567890", "12345678x0"}
	for _, number := range invalid {
		if err := ValidateAccountNumber(number); err == nil {
			t.Errorf("number %q accepted", number)
		}
	}
}

func TestValidateClientRequestID(t *testing.T) {
	if err := ValidateClientRequestID(""); err != nil {
		t.Errorf("empty id: %v", err)
	}

	if err := ValidateClientRequestID(strings.Repeat("k", MaxClientRequestIDLen)); err != nil {
		t.Errorf("max-length id: %v", err)
	}

	if err := ValidateClientRequestID(strings.Repeat("k", MaxClientRequestIDLen+1)); err == nil {
		t.Error("overlong id accepted")
	}
}

func TestValidateTransferCode(t *testing.T) {
	if err := ValidateTransferCode("123456", 6); err != nil {
		t.Errorf("valid code rejected: %v", err)
	}

	invalid := []string{"", "12345", "1234567", "12a456", "12 456"}
	for _, code := range invalid {
		if err := ValidateTransferCode(code, 6); err != ErrInvalidOrExpiredCode {
			t.Errorf("code %q: got %v, want ErrInvalidOrExpiredCode", code, err)
		}
	}
}
