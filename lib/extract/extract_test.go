package extract

import (
	"context"
	"testing"
	"time"

	"propfirm-backend/lib/currency"
	"propfirm-backend/lib/rules"

	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	e := NewEngine("Test Firm", "https://firm.example", currency.NewConverter(nil))
	e.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func findTrace(t *testing.T, r rules.Record, field string) rules.FieldTrace {
	t.Helper()
	for _, tr := range r.Diagnostics.Fields {
		if tr.Field == field {
			return tr
		}
	}
	t.Fatalf("no trace for field %q", field)
	return rules.FieldTrace{}
}

func TestAccountSizesFindsDollarAmounts(t *testing.T) {
	text := "Choose your account: $25,000, $50,000 or $100,000 challenge"
	require.Equal(t, []string{"$25,000", "$50,000", "$100,000"}, AccountSizes(text))
}

func TestAccountSizesKShorthand(t *testing.T) {
	text := "Our 50K and 100K challenges start today"
	require.Equal(t, []string{"$50,000", "$100,000"}, AccountSizes(text))
}

func TestAccountSizesDefaultsWhenNothingFound(t *testing.T) {
	text := "absolutely no figures on this page"
	require.Equal(t,
		[]string{"$25,000", "$50,000", "$100,000", "$150,000"},
		AccountSizes(text))
}

func TestAccountSizesCappedAndSorted(t *testing.T) {
	text := "$120,000 $110,000 $100,000 $90,000 $80,000 $70,000 " +
		"$60,000 $50,000 $40,000 $30,000 $20,000 $10,000"
	sizes := AccountSizes(text)
	require.Len(t, sizes, 10)
	require.Equal(t, "$10,000", sizes[0])
	require.Equal(t, "$100,000", sizes[9])
}

func TestExtractFiftyKScenario(t *testing.T) {
	e := testEngine()
	text := "Account Size: $50,000 ... Max Drawdown 4% ... Profit Split 90%"

	records := e.Extract(context.Background(), text)
	require.Len(t, records, 1)

	r := records[0]
	require.Equal(t, "$50,000", r.AccountSize)
	require.Equal(t, 50000.0, r.AccountSizeUSD)
	require.Equal(t, 2000.0, *r.EvaluationMaxDrawdownUSD)
	require.Equal(t, 90.0, *r.ProfitSplitPercent)
	require.Equal(t, rules.StatusOK, r.Status)

	// no explicit daily limit, estimated as half the drawdown
	require.Equal(t, 1000.0, *r.EvaluationDailyLossUSD)
	require.True(t, findTrace(t, r, "evaluation_daily_loss_usd").Defaulted)
	require.False(t, findTrace(t, r, "evaluation_max_drawdown_usd").Defaulted)
	require.NotEmpty(t, findTrace(t, r, "evaluation_max_drawdown_usd").Pattern)
}

func TestExtractAllDefaultsWhenNoFigures(t *testing.T) {
	e := testEngine()
	text := "Join the best prop firm around. Traders welcome."

	records := e.Extract(context.Background(), text)
	require.Len(t, records, 4)

	byLabel := map[string]rules.Record{}
	for _, r := range records {
		byLabel[r.AccountSize] = r
	}

	r := byLabel["$50,000"]
	require.Equal(t, 5000.0, *r.EvaluationTargetUSD)
	require.Equal(t, 3000.0, *r.EvaluationMaxDrawdownUSD)
	require.Equal(t, 1500.0, *r.EvaluationDailyLossUSD)
	require.Equal(t, 80.0, *r.ProfitSplitPercent)
	for _, field := range []string{
		"evaluation_target_usd", "evaluation_max_drawdown_usd",
		"evaluation_daily_loss_usd", "profit_split_percent",
	} {
		require.True(t, findTrace(t, r, field).Defaulted, field)
	}

	// tiered defaults shift with the account size
	require.Equal(t, 3000.0, *byLabel["$25,000"].EvaluationTargetUSD)
	require.Equal(t, 8000.0, *byLabel["$100,000"].EvaluationTargetUSD)
	require.Equal(t, 12000.0, *byLabel["$150,000"].EvaluationTargetUSD)
}

func TestExtractIsDeterministic(t *testing.T) {
	e := testEngine()
	text := "Account Size: $50,000. Profit target 8%, trailing drawdown 5%, " +
		"payouts weekly, 90% profit split, $349 evaluation fee."

	first := e.Extract(context.Background(), text)
	second := e.Extract(context.Background(), text)
	require.Equal(t, first, second)
}

func TestProfitSplitPicksLargestPlausible(t *testing.T) {
	e := testEngine()
	split, trace := e.profitSplit("We pay an 80/20 profit split, top traders keep 90%")
	require.Equal(t, 90.0, split)
	require.False(t, trace.Defaulted)
}

func TestProfitSplitRatioMustSumToHundred(t *testing.T) {
	e := testEngine()
	split, trace := e.profitSplit("payout ratio 70/40 for partners")
	require.Equal(t, defaultSplit, split)
	require.True(t, trace.Defaulted)
}

func TestExtractClassifiesEnums(t *testing.T) {
	e := testEngine()
	text := "Account Size: $50,000. End of day drawdown. Payouts are bi-weekly. " +
		"Trade on NinjaTrader via Rithmic data."

	records := e.Extract(context.Background(), text)
	require.Len(t, records, 1)
	r := records[0]
	require.Equal(t, rules.DrawdownEndOfDay, r.EvaluationDrawdownKind)
	require.Equal(t, rules.PayoutBiweekly, r.PayoutCadence)
	require.Equal(t, rules.PlatformNinjaTrader, r.Platform)
	require.Equal(t, rules.BrokerRithmic, r.Broker)
}

func TestExtractReadsMinDaysAndConsistency(t *testing.T) {
	e := testEngine()
	text := "Account Size: $50,000. Minimum 5 trading days before your first payout. " +
		"Consistency rule: required for all accounts."

	records := e.Extract(context.Background(), text)
	require.Len(t, records, 1)

	r := records[0]
	require.NotNil(t, r.EvaluationMinDays)
	require.Equal(t, 5, *r.EvaluationMinDays)
	require.NotNil(t, r.EvaluationConsistency)
	require.True(t, *r.EvaluationConsistency)
	require.False(t, findTrace(t, r, "evaluation_min_days").Defaulted)
	require.False(t, findTrace(t, r, "evaluation_consistency").Defaulted)
}

func TestExtractLeavesUnstatedProseFieldsNil(t *testing.T) {
	e := testEngine()

	records := e.Extract(context.Background(), "Account Size: $50,000. Profit target 8%.")
	require.Len(t, records, 1)
	require.Nil(t, records[0].EvaluationMinDays)
	require.Nil(t, records[0].EvaluationConsistency)
}

func TestPlaceholderCarriesStatusAndNote(t *testing.T) {
	e := testEngine()
	r := e.Placeholder(rules.StatusLoginRequired, "login wall on landing page")
	require.Equal(t, rules.StatusLoginRequired, r.Status)
	require.Equal(t, "Extraction Failed", r.AccountSize)
	require.Equal(t, "login wall on landing page", r.Diagnostics.Note)
	require.Equal(t, 0.0, r.AccountSizeUSD)
}
