package credits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreditAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr error
	}{
		{name: "positive ok", amount: 25},
		{name: "boundary inclusive", amount: 10_000},
		{name: "zero non-positive", amount: 0, wantErr: ErrNonPositiveAmount},
		{name: "negative non-positive", amount: -1, wantErr: ErrNonPositiveAmount},
		{name: "NaN non-finite", amount: math.NaN(), wantErr: ErrNonFiniteAmount},
		{name: "Inf non-finite", amount: math.Inf(1), wantErr: ErrNonFiniteAmount},
		// The sign check precedes the finiteness check, so -Inf reports as
		// non-positive rather than non-finite.
		{name: "negative Inf non-positive", amount: math.Inf(-1), wantErr: ErrNonPositiveAmount},
		{name: "over limit", amount: 10_001, wantErr: ErrAmountExceedsLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreditAmount(tt.amount)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var ae *AmountError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, "amount", ae.Field)
			assert.NotEmpty(t, ae.Code)
		})
	}
}

func TestMakeIdempotencyKey(t *testing.T) {
	assert.Equal(t, "purchase:user123", MakeIdempotencyKey("purchase", "user123"))

	// Falsy-but-present stable ids still yield deterministic keys distinct
	// from the no-id case.
	assert.Equal(t, "test:0", MakeIdempotencyKey("test", "0"))
	assert.Equal(t, "test:", MakeIdempotencyKey("test", ""))
	assert.NotEqual(t, MakeIdempotencyKey("test", "0"), MakeIdempotencyKey("test"))

	// Without a stable id, repeated calls never collide.
	a := MakeIdempotencyKey("random")
	b := MakeIdempotencyKey("random")
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "random:")
}
