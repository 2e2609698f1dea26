package credits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditsToCents(t *testing.T) {
	tests := []struct {
		name    string
		credits float64
		want    int64
		wantErr bool
	}{
		{name: "one credit", credits: 1, want: 50},
		{name: "fractional credit rounds", credits: 1.5, want: 75},
		{name: "sub-cent rounds to nearest", credits: 0.011, want: 1},
		{name: "zero", credits: 0, want: 0},
		{name: "negative rejected", credits: -1, wantErr: true},
		{name: "NaN rejected", credits: math.NaN(), wantErr: true},
		{name: "Inf rejected", credits: math.Inf(1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CreditsToCents(tt.credits)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBalanceCapBoundary(t *testing.T) {
	// The cap is denominated in credits for credit inputs and in euros for
	// euro inputs, never in cents.
	got, err := CreditsToCents(MaxCreditBalance)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxCreditBalance*CentsPerCredit), got)

	_, err = CreditsToCents(MaxCreditBalance + 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = CreditsToCents(2 * MaxCreditBalance)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = QuoteSubscription(MaxCreditBalance + 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = QuoteSubscription(2 * MaxCreditBalance)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = EurosToCents(MaxEuroAmount())
	require.NoError(t, err)
	_, err = EurosToCents(MaxEuroAmount() + 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCentsToCredits(t *testing.T) {
	got, err := CentsToCredits(100)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	_, err = CentsToCredits(-1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestConversionRoundTrip(t *testing.T) {
	// centsToCredits(creditsToCents(c)) must equal c within one cent of drift.
	for _, c := range []float64{0, 0.02, 1, 2.5, 13.37, 100, 9999.98} {
		cents, err := CreditsToCents(c)
		require.NoError(t, err)
		back, err := CentsToCredits(cents)
		require.NoError(t, err)
		assert.InDelta(t, c, back, 1.0/CentsPerCredit, "credits %v", c)
	}
}

func TestEuroConversions(t *testing.T) {
	cents, err := EurosToCents(19.99)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), cents)

	euros, err := CentsToEuros(1999)
	require.NoError(t, err)
	assert.Equal(t, 19.99, euros)

	_, err = EurosToCents(math.Inf(-1))
	assert.Error(t, err)
	_, err = CentsToEuros(-5)
	assert.Error(t, err)
}

func TestQuoteSubscription(t *testing.T) {
	tests := []struct {
		name         string
		credits      float64
		wantDiscount float64
		wantCents    int64
	}{
		{name: "below first tier", credits: 50, wantDiscount: 0, wantCents: 2500},
		{name: "first tier boundary", credits: 100, wantDiscount: 2, wantCents: 4900},
		{name: "mid tier", credits: 250, wantDiscount: 4, wantCents: 12000},
		{name: "top tier", credits: 450, wantDiscount: 10, wantCents: 20250},
		{name: "above top tier", credits: 600, wantDiscount: 10, wantCents: 27000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := QuoteSubscription(tt.credits)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDiscount, q.DiscountPercent)
			assert.Equal(t, tt.wantCents, q.PriceCents)
			assert.InDelta(t, float64(q.PriceCents)/tt.credits, q.PerCreditCents, 0.51)
		})
	}

	_, err := QuoteSubscription(-10)
	assert.Error(t, err)
}
