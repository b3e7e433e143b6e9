package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractNumber(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"10%", 10, true},
		{"$25,000", 25000, true},
		{"5.5%", 5.5, true},
		{"2-3 days", 2, true},
		{"drawdown of 4% on $50,000", 4, true},
		{"no figures here", 0, false},
		{"", 0, false},
	}

	for _, test := range testCases {
		n, ok := ExtractNumber(test.input)
		require.Equal(t, test.ok, ok, test.input)
		require.Equal(t, test.expected, n, test.input)
	}
}

func TestExtractPercentage(t *testing.T) {
	n, ok := ExtractPercentage("90% profit split")
	require.True(t, ok)
	require.Equal(t, 90.0, n)

	_, ok = ExtractPercentage("$90")
	require.False(t, ok)
}

func TestExtractDays(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"minimum 5 days", 5, true},
		{"at least 10 trading days", 10, true},
		{"2-3 days", 2, true},
		{"no day count", 0, false},
	}

	for _, test := range testCases {
		n, ok := ExtractDays(test.input)
		require.Equal(t, test.ok, ok, test.input)
		require.Equal(t, test.expected, n, test.input)
	}
}

func TestParseBool(t *testing.T) {
	v, ok := ParseBool("Consistency rule: Required")
	require.True(t, ok)
	require.True(t, v)

	v, ok = ParseBool("Not required")
	require.True(t, ok)
	require.False(t, v)

	_, ok = ParseBool("maybe")
	require.False(t, ok)
}

func TestCleanText(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"  €50,000\ttarget  10%\n($5,000)  ", "€50,000 target 10% ($5,000)"},
		{"£10,000 static drawdown★", "£10,000 static drawdown"},
		{"fee: $149/month", "fee: $149/month"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, CleanText(test.input), test.input)
	}
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName(" Max  Drawdown ", []string{"maxdrawdown"}))
	require.False(t, MatchName("profit target", []string{"drawdown"}))
}
