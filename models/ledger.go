package models

import (
	"fmt"
	"time"
)

// AccountKind identifies one of the three ledger rails.
type AccountKind string

const (
	AccountCustomer AccountKind = "customer"
	AccountBusiness AccountKind = "business"
	AccountSystem   AccountKind = "system"
)

// SystemRevenueTag is the owner tag of the platform's own revenue account.
const SystemRevenueTag = "platform_revenue"

// Account identifies the owner of a ledger rail. Exactly one owner reference
// is set, matching Kind. Use the constructors below instead of building the
// struct by hand.
type Account struct {
	Kind       AccountKind `bson:"kind" json:"kind"`
	UserID     string      `bson:"user_id,omitempty" json:"user_id,omitempty"`
	BusinessID string      `bson:"business_id,omitempty" json:"business_id,omitempty"`
	SystemTag  string      `bson:"system_tag,omitempty" json:"system_tag,omitempty"`
}

// CustomerAccount returns the ledger account of a customer.
func CustomerAccount(userID string) Account {
	return Account{Kind: AccountCustomer, UserID: userID}
}

// BusinessAccount returns the ledger account of a business.
func BusinessAccount(businessID string) Account {
	return Account{Kind: AccountBusiness, BusinessID: businessID}
}

// SystemAccount returns a platform-owned ledger account.
func SystemAccount(tag string) Account {
	return Account{Kind: AccountSystem, SystemTag: tag}
}

// Validate checks that exactly one owner reference is set and that it matches Kind.
func (a Account) Validate() error {
	refs := 0
	if a.UserID != "" {
		refs++
	}
	if a.BusinessID != "" {
		refs++
	}
	if a.SystemTag != "" {
		refs++
	}
	if refs != 1 {
		return fmt.Errorf("account must carry exactly one owner reference, got %d", refs)
	}
	switch a.Kind {
	case AccountCustomer:
		if a.UserID == "" {
			return fmt.Errorf("customer account requires a user id")
		}
	case AccountBusiness:
		if a.BusinessID == "" {
			return fmt.Errorf("business account requires a business id")
		}
	case AccountSystem:
		if a.SystemTag == "" {
			return fmt.Errorf("system account requires a system tag")
		}
	default:
		return fmt.Errorf("unknown account kind %q", a.Kind)
	}
	return nil
}

// OwnerRef returns the single owner reference of the account.
func (a Account) OwnerRef() string {
	switch a.Kind {
	case AccountCustomer:
		return a.UserID
	case AccountBusiness:
		return a.BusinessID
	default:
		return a.SystemTag
	}
}

// EntryType is the closed enumeration of value-movement reasons.
type EntryType string

const (
	EntryCreditPurchase      EntryType = "credit_purchase"
	EntryBonus               EntryType = "bonus"
	EntryGift                EntryType = "gift"
	EntryWelcomeBonus        EntryType = "welcome_bonus"
	EntrySubscriptionRenewal EntryType = "subscription_renewal"
	EntryBookingSpend        EntryType = "booking_spend"
	EntryRevenueEarn         EntryType = "revenue_earn"
	EntrySystemCreditCost    EntryType = "system_credit_cost"
	EntryRefund              EntryType = "refund"
	EntryAdjustment          EntryType = "adjustment"
)

// GrantKinds are the entry types a credit grant may carry.
var GrantKinds = map[EntryType]bool{
	EntryCreditPurchase:      true,
	EntryBonus:               true,
	EntryGift:                true,
	EntryWelcomeBonus:        true,
	EntrySubscriptionRenewal: true,
	EntryRefund:              true,
}

// IsValid reports whether t is a member of the closed entry-type set.
func (t EntryType) IsValid() bool {
	switch t {
	case EntryCreditPurchase, EntryBonus, EntryGift, EntryWelcomeBonus,
		EntrySubscriptionRenewal, EntryBookingSpend, EntryRevenueEarn,
		EntrySystemCreditCost, EntryRefund, EntryAdjustment:
		return true
	}
	return false
}

// LedgerEntry is the atomic, immutable record of value movement. Entries are
// append-only: corrections are posted as new offsetting entries, never edits.
type LedgerEntry struct {
	ID            string    `bson:"id" json:"id"`
	TransactionID string    `bson:"transaction_id" json:"transaction_id"` // groups the entries of one logical operation
	Account       Account   `bson:"account" json:"account"`
	Amount        float64   `bson:"amount" json:"amount"` // signed, in credits
	Type          EntryType `bson:"type" json:"type"`
	Description   string    `bson:"description" json:"description"`

	// IdempotencyKey identifies the triggering external event. A unique index
	// on (idempotency_key, account.kind) guarantees at-most-once posting.
	IdempotencyKey string `bson:"idempotency_key" json:"idempotency_key"`

	EffectiveAt time.Time `bson:"effective_at" json:"effective_at"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	CreatedBy   string    `bson:"created_by" json:"created_by"`

	// Optional back-references; never ownership.
	RelatedBookingID       string `bson:"related_booking_id,omitempty" json:"related_booking_id,omitempty"`
	RelatedClassInstanceID string `bson:"related_class_instance_id,omitempty" json:"related_class_instance_id,omitempty"`

	// Grant-only fields.
	ExpiresAt         *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreditValue       float64    `bson:"credit_value,omitempty" json:"credit_value,omitempty"` // cents paid per credit, purchases only
	ExternalReference string     `bson:"external_reference,omitempty" json:"external_reference,omitempty"`
}
