package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSplit(t *testing.T) {
	business, system := ComputeSplit(2000, 0.20)
	assert.Equal(t, int64(1600), business)
	assert.Equal(t, int64(400), system)

	business, system = ComputeSplit(0, 0.20)
	assert.Equal(t, int64(0), business)
	assert.Equal(t, int64(0), system)
}

func TestComputeSplitConservation(t *testing.T) {
	// Shares are rounded independently, so the sum may drift from the net
	// amount by at most one cent. That bound is the contract.
	rates := []float64{0, 0.05, 0.10, 0.15, 0.20, 0.25, 0.30}
	amounts := []int64{1, 3, 25, 99, 101, 1999, 2000, 12345, 999999}

	for _, rate := range rates {
		for _, net := range amounts {
			business, system := ComputeSplit(net, rate)
			assert.Equal(t, int64(math.Round(float64(net)*(1-rate))), business)
			assert.Equal(t, int64(math.Round(float64(net)*rate)), system)

			diff := business + system - net
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, int64(1),
				"net=%d rate=%v: business=%d system=%d", net, rate, business, system)
		}
	}
}
