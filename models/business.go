package models

import "time"

// FeeStructure holds the platform-fee configuration of a business.
type FeeStructure struct {
	// BaseFeeRate is the platform's cut, restricted to the allowed enumerated
	// set (0%, 5%, ... 30%). Mutated only through the audited fee-rate update.
	BaseFeeRate float64   `bson:"base_fee_rate" json:"base_fee_rate"`
	UpdatedBy   string    `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Business represents a tenant business on the platform.
type Business struct {
	ID        string       `bson:"id" json:"id"`
	Name      string       `bson:"name" json:"name"`
	Email     string       `bson:"email" json:"email"`
	Fees      FeeStructure `bson:"fees" json:"fees"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at" json:"updated_at"`

	// Cached ledger balances, reconcilable against the entry log.
	CreditsBalance        float64 `bson:"credits_balance" json:"credits_balance"`
	LifetimeCreditsEarned float64 `bson:"lifetime_credits_earned" json:"lifetime_credits_earned"`
}
