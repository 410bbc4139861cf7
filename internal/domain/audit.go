package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only record of a mutating operation. Writes are
// best-effort: a failed audit write never rolls back the primary operation.
type AuditLog struct {
	ID        string
	ActorID   string
	Action    string
	Resource  string
	Meta      JSON
	CreatedAt time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// Audit actions recorded by the engine.
const (
	AuditActionDeposit          = "DEPOSIT"
	AuditActionWithdraw         = "WITHDRAW"
	AuditActionTransferSent     = "TRANSFER_SENT"
	AuditActionTransferReceived = "TRANSFER_RECEIVED"
	AuditActionTransferInitiate = "TRANSFER_INITIATE"
	AuditActionSetNickname      = "SET_NICKNAME"
	AuditActionAccountCreate    = "ACCOUNT_CREATE"
)

// AuditFilter defines filters for querying audit logs.
type AuditFilter struct {
	ActorID  string
	Action   string
	Resource string
	Limit    int
	Offset   int
}

// MarshalMeta converts an arbitrary value to audit metadata.
func MarshalMeta(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal meta"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal meta"}
	}

	return result
}
