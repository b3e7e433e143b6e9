package rulestore_test

import (
	"context"
	"testing"
	"time"

	"propfirm-backend/lib/rules"
	"propfirm-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestArchiveRoundTrip(t *testing.T) {
	store, cleanup := testutil.Store(t, "test:lib/rulestore")
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	runID, err := store.BeginRun(ctx, started)
	require.NoError(t, err)

	full := rules.Record{
		FirmName:       "Apex Trader Funding",
		AccountSize:    "$50,000",
		AccountSizeUSD: 50000,
		WebsiteURL:     "https://apextraderfunding.com",
		Broker:         rules.BrokerRithmic,
		Platform:       rules.PlatformNinjaTrader,
		LastUpdated:    started,
		Status:         rules.StatusOK,

		EvaluationTargetUSD:      rules.Float(3000),
		EvaluationMaxDrawdownUSD: rules.Float(2500),
		EvaluationDailyLossUSD:   rules.Float(1250),
		EvaluationDrawdownKind:   rules.DrawdownTrailing,
		EvaluationMinDays:        rules.Int(7),
		EvaluationConsistency:    rules.Bool(true),

		FundedMaxDrawdownUSD: rules.Float(2500),
		FundedDailyLossUSD:   rules.Float(1250),
		FundedDrawdownKind:   rules.DrawdownTrailing,

		ProfitSplitPercent: rules.Float(90),
		PayoutCadence:      rules.PayoutMonthly,
		EvaluationFeeUSD:   rules.Float(167),

		Diagnostics: rules.Diagnostics{
			Method: "pattern_matching",
			Fields: []rules.FieldTrace{
				{Field: "profit_split_percent", Pattern: "split-keyword-then-percent", Excerpt: "90% profit split"},
			},
		},
	}
	placeholder := rules.Record{
		FirmName:    "Blocked Firm",
		AccountSize: "Extraction Failed",
		WebsiteURL:  "https://blocked.example",
		LastUpdated: started,
		Status:      rules.StatusLoginRequired,
		Diagnostics: rules.Diagnostics{Method: "placeholder", Note: "login wall"},
	}

	require.NoError(t, store.SaveRecords(ctx, runID, []rules.Record{full, placeholder}))
	require.NoError(t, store.FinishRun(ctx, runID, started.Add(time.Minute), 2))

	loaded, err := store.RunRecords(ctx, runID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, full, loaded[0])
	require.Equal(t, placeholder, loaded[1])
}

func TestRunsAreIsolated(t *testing.T) {
	store, cleanup := testutil.Store(t, "test:lib/rulestore")
	defer cleanup()

	ctx := context.Background()
	now := time.Now().Truncate(time.Second).UTC()

	first, err := store.BeginRun(ctx, now)
	require.NoError(t, err)
	second, err := store.BeginRun(ctx, now)
	require.NoError(t, err)

	rec := rules.Record{
		FirmName:    "Tradeify",
		AccountSize: "$100,000",
		WebsiteURL:  "https://tradeify.co",
		LastUpdated: now,
		Status:      rules.StatusOK,
	}
	require.NoError(t, store.SaveRecords(ctx, first, []rules.Record{rec}))

	loaded, err := store.RunRecords(ctx, second)
	require.NoError(t, err)
	require.Empty(t, loaded)
}
