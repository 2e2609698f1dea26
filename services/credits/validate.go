package credits

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// MaxOperationCredits caps a single ledger operation, distinct from the
// aggregate balance cap. Overridable from config at startup.
var MaxOperationCredits float64 = 10_000

// ValidateCreditAmount guards every ledger posting. The sign check runs
// before the finiteness check, so -Inf reports as non-positive.
func ValidateCreditAmount(amount float64) error {
	if amount <= 0 {
		return newAmountError("nonPositiveAmount", "amount",
			fmt.Sprintf("credit amount must be greater than zero, got %v", amount), ErrNonPositiveAmount)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return newAmountError("nonFiniteAmount", "amount",
			"credit amount must be a finite number", ErrNonFiniteAmount)
	}
	if amount > MaxOperationCredits {
		return newAmountError("amountExceedsLimit", "amount",
			fmt.Sprintf("credit amount %v exceeds the per-operation maximum of %v", amount, MaxOperationCredits), ErrAmountExceedsLimit)
	}
	return nil
}

// MakeIdempotencyKey builds the exactly-once guard for ledger postings.
// With a stable id the key is deterministic ("namespace:id"), even for empty
// or zero-valued ids. Without one, a fresh unique suffix is generated so
// repeated calls never collide.
func MakeIdempotencyKey(namespace string, stableID ...string) string {
	if len(stableID) > 0 {
		return namespace + ":" + stableID[0]
	}
	return namespace + ":" + uuid.New().String()
}
