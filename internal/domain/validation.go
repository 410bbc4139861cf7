package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxLabelLength         = 255
	MinNicknameLength      = 3
	MaxNicknameLength      = 20
	AccountNumberLength    = 10
	MaxClientRequestIDLen  = 64
	TransferCodeCharacters = "0123456789"
)

var (
	nicknameRegex      = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	accountNumberRegex = regexp.MustCompile(`^1[0-9]{9}$`)
	codeRegex          = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateAmount validates a deposit/withdraw/transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// ValidateLabel validates a human transaction label.
func ValidateLabel(label string) error {
	if len(label) > MaxLabelLength {
		return fmt.Errorf("%w: label exceeds %d characters", ErrValidation, MaxLabelLength)
	}

	return nil
}

// ValidateNickname validates a transfer nickname.
func ValidateNickname(nickname string) error {
	nickname = strings.TrimSpace(nickname)

	if len(nickname) < MinNicknameLength || len(nickname) > MaxNicknameLength {
		return fmt.Errorf("%w: nickname must be %d-%d characters", ErrValidation, MinNicknameLength, MaxNicknameLength)
	}

	if !nicknameRegex.MatchString(nickname) {
		return fmt.Errorf("%w: nickname may contain only letters, digits and underscore", ErrValidation)
	}

	return nil
}

// ValidateAccountNumber validates a machine-generated account number.
func ValidateAccountNumber(number string) error {
	if !accountNumberRegex.MatchString(number) {
		return fmt.Errorf("%w: account number must be %d digits starting with 1", ErrValidation, AccountNumberLength)
	}

	return nil
}

// ValidateClientRequestID validates an optional idempotency key.
func ValidateClientRequestID(id string) error {
	if id == "" {
		return nil
	}

	if len(id) > MaxClientRequestIDLen {
		return fmt.Errorf("%w: client request id exceeds %d characters", ErrValidation, MaxClientRequestIDLen)
	}

	return nil
}

// ValidateTransferCode validates the shape of a verification code.
func ValidateTransferCode(code string, length int) error {
	if len(code) != length || !codeRegex.MatchString(code) {
		return ErrInvalidOrExpiredCode
	}

	return nil
}
