package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultbank/bankcore/internal/adapter/http/dto"
	"github.com/vaultbank/bankcore/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response without a taxonomy code.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes an error response classified by the domain
// taxonomy. Limit denials carry the policy figures so the caller can render
// remaining headroom.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	resp := dto.ErrorResponse{
		Error:   message,
		Code:    string(domain.CodeOf(err)),
		Message: err.Error(),
	}

	var limitErr *domain.LimitError
	if errors.As(err, &limitErr) {
		resp.Limits = &dto.LimitFigures{
			Reasons:    limitErr.Reasons,
			Balance:    limitErr.Balance,
			DailyUsed:  limitErr.DailyUsed,
			DailyLimit: limitErr.DailyLimit,
			PerTxLimit: limitErr.PerTxLimit,
		}
	}

	writeJSON(w, mapDomainError(err), resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNicknameTaken),
		errors.Is(err, domain.ErrNicknameSet):
		return http.StatusConflict
	}

	switch domain.CodeOf(err) {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInsufficientFunds,
		domain.CodeLimitPerTransaction,
		domain.CodeLimitDaily:
		return http.StatusUnprocessableEntity
	case domain.CodeAccountLocked:
		return http.StatusForbidden
	case domain.CodeInvalidOrExpiredCode,
		domain.CodeSelfTransfer,
		domain.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseTimeQuery parses an RFC 3339 query parameter. Absent or malformed
// values are treated as no filter.
func parseTimeQuery(r *http.Request, key string) *time.Time {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

// parseDecimalQuery parses a decimal query parameter. Absent or malformed
// values are treated as no filter.
func parseDecimalQuery(r *http.Request, key string) *decimal.Decimal {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return nil
	}
	return &d
}
