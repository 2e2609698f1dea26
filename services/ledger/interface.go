package ledger

import (
	"context"
	"time"

	"kymaclub/models"
)

// GrantCreditArgs describes a credit grant to a customer account.
type GrantCreditArgs struct {
	UserID      string           `json:"user_id"`
	Amount      float64          `json:"amount"`
	Kind        models.EntryType `json:"kind"`
	Description string           `json:"description"`
	ActorID     string           `json:"actor_id"`

	// CreditValue is the price paid per credit in cents, purchases only.
	CreditValue float64 `json:"credit_value,omitempty"`
	// ExpiresAt makes the granted credits expire; enforcement is a read-time
	// filter, never a ledger mutation.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// ExternalReference ties the grant to an external event (e.g. a payment
	// processor charge id) and doubles as the idempotency stable id.
	ExternalReference string `json:"external_reference,omitempty"`
	// IdempotencyKey overrides the derived key when set.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	// EffectiveAt backdates the entry; zero means now.
	EffectiveAt time.Time `json:"effective_at,omitempty"`
}

// GrantResult reports the outcome of a credit grant.
type GrantResult struct {
	TransactionID string `json:"transaction_id"`
	WasReplay     bool   `json:"was_replay"`
}

// TransferCreditArgs describes the three-way split triggered by a completed
// booking.
type TransferCreditArgs struct {
	UserID        string  `json:"user_id"`
	BusinessID    string  `json:"business_id"`
	BookingID     string  `json:"booking_id"`
	CreditsAmount float64 `json:"credits_amount"`
	// FeeRate is the booking's snapshotted platform-fee rate in [0,1).
	FeeRate        float64 `json:"fee_rate"`
	Description    string  `json:"description"`
	ActorID        string  `json:"actor_id"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// CreditTransferResult reports the outcome of a booking transfer.
type CreditTransferResult struct {
	TransactionID         string `json:"transaction_id"`
	NetRevenueCents       int64  `json:"net_revenue_cents"`
	BusinessEarningsCents int64  `json:"business_earnings_cents"`
	SystemCutCents        int64  `json:"system_cut_cents"`
	WasReplay             bool   `json:"was_replay"`
}

// ReconcileResult reports a cache-versus-ledger comparison. Updated is false
// when the cache already matched.
type ReconcileResult struct {
	PreviousBalance  float64 `json:"previous_balance"`
	ComputedBalance  float64 `json:"computed_balance"`
	BalanceDelta     float64 `json:"balance_delta"`
	PreviousLifetime float64 `json:"previous_lifetime"`
	ComputedLifetime float64 `json:"computed_lifetime"`
	LifetimeDelta    float64 `json:"lifetime_delta"`
	Updated          bool    `json:"updated"`
}

// Service is the double-entry credit ledger engine.
type Service interface {
	// Grant posts a single positive customer entry. A duplicate idempotency
	// key is a successful replay, not an error.
	Grant(ctx context.Context, args GrantCreditArgs) (*GrantResult, error)

	// Transfer posts the customer/business/system split of a completed
	// booking atomically: all three entries commit or none do.
	Transfer(ctx context.Context, args TransferCreditArgs) (*CreditTransferResult, error)

	// Reconcile recomputes an account's balance from its entries and corrects
	// the cached fields if they diverge. Always cache toward ledger, never
	// the reverse. Safe to run repeatedly.
	Reconcile(ctx context.Context, acct models.Account) (*ReconcileResult, error)

	// AvailableCredits returns a customer's spendable balance, filtering out
	// expired unspent grants at read time.
	AvailableCredits(ctx context.Context, userID string) (float64, error)
}

// GrantNotifier dispatches a best-effort notification after a fresh grant.
// Failures are logged by the engine and never propagate to the caller.
type GrantNotifier interface {
	NotifyCreditsGranted(ctx context.Context, payload models.CreditGrantPayload) error
}
