package currency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c := NewConverter(nil)

	testCases := []struct {
		input  string
		amount float64
		code   string
		ok     bool
	}{
		{"$25,000", 25000, "USD", true},
		{"€50,000", 50000, "EUR", true},
		{"£10,000", 10000, "GBP", true},
		{"25000 USD", 25000, "USD", true},
		{"12,500cad", 12500, "CAD", true},
		{"25000", 25000, "USD", true},
		{"80%", 0, "", false},
		{"", 0, "", false},
		{"no amount", 0, "", false},
	}

	for _, test := range testCases {
		amount, code, ok := c.Parse(test.input)
		require.Equal(t, test.ok, ok, test.input)
		require.Equal(t, test.amount, amount, test.input)
		require.Equal(t, test.code, code, test.input)
	}
}

func TestToUSDKnownRates(t *testing.T) {
	c := NewConverter(nil)

	for code, rate := range DefaultRates {
		for _, amount := range []float64{0, 1, 999.99, 50000, 1234567.89} {
			expected := math.Round(amount*rate*100) / 100
			require.InDelta(t, expected, c.ToUSD(amount, code), 0.001, code)
		}
	}
}

func TestToUSDUnknownCodePassesThrough(t *testing.T) {
	c := NewConverter(nil)
	require.Equal(t, 5000.0, c.ToUSD(5000, "XYZ"))
}

func TestParseToUSD(t *testing.T) {
	c := NewConverter(nil)

	usd, ok := c.ParseToUSD("€50,000")
	require.True(t, ok)
	require.Equal(t, 54000.0, usd)

	_, ok = c.ParseToUSD("just words")
	require.False(t, ok)
}

func TestFormatUSD(t *testing.T) {
	require.Equal(t, "$50,000", FormatUSD(50000))
	require.Equal(t, "$1,234,567", FormatUSD(1234567))
	require.Equal(t, "$999", FormatUSD(999))
	require.Equal(t, "$100,000.50", FormatUSD(100000.5))
	require.Equal(t, "$0", FormatUSD(0))
}
