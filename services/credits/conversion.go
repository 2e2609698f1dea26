package credits

import (
	"fmt"
	"math"
)

// CentsPerCredit is the fixed exchange ratio: 1 credit = 50 cents.
const CentsPerCredit = 50

// MaxCreditBalance is the soft upper bound on any credit amount, preventing
// overflow in aggregate sums. Overridable from config at startup.
var MaxCreditBalance float64 = 1_000_000

// MaxEuroAmount is the euro-denominated equivalent of MaxCreditBalance.
func MaxEuroAmount() float64 {
	return MaxCreditBalance * CentsPerCredit / 100
}

// CreditsToCents converts a credit amount to cents, rounding to the nearest
// integer cent.
func CreditsToCents(credits float64) (int64, error) {
	if err := validateNonNegativeFinite("credits", credits, MaxCreditBalance); err != nil {
		return 0, err
	}
	return int64(math.Round(credits * CentsPerCredit)), nil
}

// CentsToCredits converts an integer cent amount to credits.
func CentsToCredits(cents int64) (float64, error) {
	if cents < 0 {
		return 0, newAmountError("invalidAmount", "cents",
			fmt.Sprintf("cents must be a non-negative integer, got %d", cents), ErrInvalidAmount)
	}
	return float64(cents) / CentsPerCredit, nil
}

// CentsToEuros converts an integer cent amount to euros.
func CentsToEuros(cents int64) (float64, error) {
	if cents < 0 {
		return 0, newAmountError("invalidAmount", "cents",
			fmt.Sprintf("cents must be a non-negative integer, got %d", cents), ErrInvalidAmount)
	}
	return float64(cents) / 100, nil
}

// EurosToCents converts a euro amount (need not be integral) to cents,
// rounding to the nearest cent.
func EurosToCents(euros float64) (int64, error) {
	if err := validateNonNegativeFinite("euros", euros, MaxEuroAmount()); err != nil {
		return 0, err
	}
	return int64(math.Round(euros * 100)), nil
}

// validateNonNegativeFinite rejects NaN/Inf, negatives, and values above max.
// The max must be denominated in the same unit as v.
func validateNonNegativeFinite(field string, v, max float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return newAmountError("invalidAmount", field,
			fmt.Sprintf("%s must be a finite number", field), ErrInvalidAmount)
	}
	if v < 0 {
		return newAmountError("invalidAmount", field,
			fmt.Sprintf("%s must not be negative, got %v", field, v), ErrInvalidAmount)
	}
	if v > max {
		return newAmountError("invalidAmount", field,
			fmt.Sprintf("%s exceeds the maximum of %v", field, max), ErrInvalidAmount)
	}
	return nil
}

// SubscriptionTier maps a monthly credit-quantity threshold to a discount.
type SubscriptionTier struct {
	MinCredits float64
	Discount   float64 // fraction of the base per-credit price
}

// subscriptionTiers is ordered by descending threshold; the first matching
// tier wins.
var subscriptionTiers = []SubscriptionTier{
	{MinCredits: 450, Discount: 0.10},
	{MinCredits: 300, Discount: 0.06},
	{MinCredits: 200, Discount: 0.04},
	{MinCredits: 100, Discount: 0.02},
	{MinCredits: 0, Discount: 0},
}

// SubscriptionQuote is the result of the tiered-discount calculation for a
// monthly credit subscription.
type SubscriptionQuote struct {
	Credits         float64 `json:"credits"`
	PriceCents      int64   `json:"price_cents"`
	PerCreditCents  float64 `json:"per_credit_cents"`
	DiscountPercent float64 `json:"discount_percent"`
}

// QuoteSubscription computes the discounted price of a monthly credit
// quantity. Pure function of (credits, fixed tier table).
func QuoteSubscription(monthlyCredits float64) (*SubscriptionQuote, error) {
	if err := validateNonNegativeFinite("credits", monthlyCredits, MaxCreditBalance); err != nil {
		return nil, err
	}
	var discount float64
	for _, tier := range subscriptionTiers {
		if monthlyCredits >= tier.MinCredits {
			discount = tier.Discount
			break
		}
	}
	perCredit := CentsPerCredit * (1 - discount)
	return &SubscriptionQuote{
		Credits:         monthlyCredits,
		PriceCents:      int64(math.Round(monthlyCredits * perCredit)),
		PerCreditCents:  perCredit,
		DiscountPercent: discount * 100,
	}, nil
}
