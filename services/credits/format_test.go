package credits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCredits(t *testing.T) {
	assert.Equal(t, "1 credit", FormatCredits(1))
	assert.Equal(t, "0 credits", FormatCredits(0))
	assert.Equal(t, "2 credits", FormatCredits(2))
	assert.Equal(t, "2.5 credits", FormatCredits(2.5))
}

func TestFormatEuros(t *testing.T) {
	assert.Equal(t, "€20.00", FormatEuros(2000))
	assert.Equal(t, "€0.05", FormatEuros(5))
	assert.Equal(t, "€19.99", FormatEuros(1999))
}
