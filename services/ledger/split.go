package ledger

import "math"

// ComputeSplit divides a net revenue amount between the business and the
// platform. Both shares are rounded independently from the net amount, so
// their sum may differ from it by at most one cent. Historical reconciliation
// outputs depend on this exact behavior; do not replace it with
// subtract-from-total arithmetic.
func ComputeSplit(netRevenueCents int64, feeRate float64) (businessEarnings, systemCut int64) {
	businessEarnings = int64(math.Round(float64(netRevenueCents) * (1 - feeRate)))
	systemCut = int64(math.Round(float64(netRevenueCents) * feeRate))
	return businessEarnings, systemCut
}
