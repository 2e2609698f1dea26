package models

import "time"

// AuditAction enumerates the privileged state changes recorded in the audit log.
type AuditAction string

const (
	AuditFeeRateUpdate    AuditAction = "fee_rate_update"
	AuditManualGrant      AuditAction = "manual_credit_grant"
	AuditBalanceReconcile AuditAction = "balance_reconcile"
)

// AuditChange is the typed union of before/after payloads carried by an audit
// entry. Payloads are serialized to JSON only at the storage boundary; in
// process code never parses JSON to inspect its own audit data.
type AuditChange interface {
	AuditChangeType() string
}

// FeeRateChange records a platform-fee rate change on a business.
type FeeRateChange struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

func (FeeRateChange) AuditChangeType() string { return "fee_rate_change" }

// CreditGrantChange records a manual credit grant issued by an administrator.
type CreditGrantChange struct {
	Amount float64 `json:"amount"`
	Kind   string  `json:"kind"`
}

func (CreditGrantChange) AuditChangeType() string { return "credit_grant" }

// BalanceReconcileChange records a cache correction performed by Reconcile.
type BalanceReconcileChange struct {
	PreviousBalance float64 `json:"previous_balance"`
	ComputedBalance float64 `json:"computed_balance"`
}

func (BalanceReconcileChange) AuditChangeType() string { return "balance_reconcile" }

// AuditLogEntry is an immutable record of a privileged state change.
// Entries are never updated or deleted.
type AuditLogEntry struct {
	ID         string      `json:"id"`
	ActorID    string      `json:"actor_id"`
	ActorEmail string      `json:"actor_email,omitempty"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	EntityName string      `json:"entity_name,omitempty"`
	Action     AuditAction `json:"action"`
	Change     AuditChange `json:"change,omitempty"`
	Reason     string      `json:"reason"`
	CreatedAt  time.Time   `json:"created_at"`
}
