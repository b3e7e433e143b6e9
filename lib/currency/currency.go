// Package currency normalizes free-form amount tokens into USD using a
// fixed rate table.
package currency

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Rates as of early 2026, one-time conversion only. Values are the USD
// worth of one unit of the keyed currency.
var DefaultRates = map[string]float64{
	"EUR": 1.08,
	"GBP": 1.25,
	"CAD": 0.74,
	"AUD": 0.63,
	"CHF": 1.12,
	"JPY": 0.0067,
	"USD": 1.0,
}

type Converter struct {
	rates map[string]float64
}

// NewConverter builds a converter over the given rate table. A nil table
// uses DefaultRates.
func NewConverter(rates map[string]float64) Converter {
	if rates == nil {
		rates = DefaultRates
	}
	return Converter{rates: rates}
}

type tokenPattern struct {
	regex *regexp.Regexp
	code  string
}

var tokenPatterns = []tokenPattern{
	{regexp.MustCompile(`\$([0-9]+\.?[0-9]*)`), "USD"},
	{regexp.MustCompile(`€([0-9]+\.?[0-9]*)`), "EUR"},
	{regexp.MustCompile(`£([0-9]+\.?[0-9]*)`), "GBP"},
	{regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*USD`), "USD"},
	{regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*EUR`), "EUR"},
	{regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*GBP`), "GBP"},
	{regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*CAD`), "CAD"},
	{regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*AUD`), "AUD"},
	{regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*CHF`), "CHF"},
	{regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*JPY`), "JPY"},
}

var bareNumber = regexp.MustCompile(`([0-9]+\.?[0-9]*)`)

// Parse extracts an amount and currency code from free text like
// "$25,000" or "50000 EUR". A bare number is assumed to be USD.
// Percentage tokens are not amounts and are rejected.
func (c Converter) Parse(text string) (float64, string, bool) {
	if text == "" {
		return 0, "", false
	}
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")

	for _, p := range tokenPatterns {
		groups := p.regex.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		amount, err := strconv.ParseFloat(groups[1], 64)
		if err != nil {
			continue
		}
		return amount, p.code, true
	}

	groups := bareNumber.FindStringSubmatch(text)
	if groups == nil {
		return 0, "", false
	}
	// a percent-suffixed number is a rate, not an amount
	if strings.Contains(text, groups[1]+"%") {
		return 0, "", false
	}
	amount, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		return 0, "", false
	}
	return amount, "USD", true
}

// ToUSD converts an amount into USD, rounded to 2 decimal places.
// Unknown currency codes pass through unconverted with a logged warning
// so that one odd token never aborts a whole extraction.
func (c Converter) ToUSD(amount float64, code string) float64 {
	code = strings.ToUpper(code)
	rate, known := c.rates[code]
	if !known {
		slog.Warn("unknown currency, passing amount through", "code", code, "amount", amount)
		return amount
	}
	converted, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		Float64()
	return converted
}

// ParseToUSD parses a token and converts it in one step.
func (c Converter) ParseToUSD(text string) (float64, bool) {
	amount, code, ok := c.Parse(text)
	if !ok {
		return 0, false
	}
	return c.ToUSD(amount, code), true
}

// FormatUSD renders an amount the way rule pages display it: "$50,000".
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	whole := d.IntPart()

	var out strings.Builder
	if whole < 0 {
		out.WriteByte('-')
		whole = -whole
	}
	out.WriteByte('$')
	out.WriteString(groupThousands(whole))

	frac := d.Sub(decimal.NewFromInt(d.IntPart())).Abs()
	if !frac.IsZero() {
		cents := frac.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		out.WriteString(fmt.Sprintf(".%02d", cents))
	}
	return out.String()
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var out strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		out.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if out.Len() > 0 {
			out.WriteByte(',')
		}
		out.WriteString(digits[i : i+3])
	}
	return out.String()
}
