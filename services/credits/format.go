package credits

import (
	"fmt"
	"math"
)

// FormatCredits renders a credit amount with a singular/plural label.
// Whole amounts drop the decimals ("1 credit", "2 credits", "2.5 credits").
func FormatCredits(credits float64) string {
	var amount string
	if credits == math.Trunc(credits) {
		amount = fmt.Sprintf("%d", int64(credits))
	} else {
		amount = fmt.Sprintf("%g", credits)
	}
	if credits == 1 {
		return amount + " credit"
	}
	return amount + " credits"
}

// FormatEuros renders a cent amount as a euro string with two decimals.
func FormatEuros(cents int64) string {
	return fmt.Sprintf("€%.2f", float64(cents)/100)
}
