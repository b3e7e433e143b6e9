package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"propfirm-backend/lib/rules"

	"github.com/stretchr/testify/require"
)

func sampleRecords() []rules.Record {
	updated := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	return []rules.Record{
		{
			FirmName:       "Apex Trader Funding",
			AccountSize:    "$50,000",
			AccountSizeUSD: 50000,
			WebsiteURL:     "https://apextraderfunding.com",
			Broker:         rules.BrokerRithmic,
			Platform:       rules.PlatformNinjaTrader,
			LastUpdated:    updated,
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

			ProfitSplitPercent: rules.Float(90.5),
			PayoutCadence:      rules.PayoutBiweekly,
			EvaluationFeeUSD:   rules.Float(167),
		},
		{
			FirmName:    "Blocked Firm",
			AccountSize: "Extraction Failed",
			WebsiteURL:  "https://blocked.example",
			LastUpdated: updated,
			Status:      rules.StatusLoginRequired,
		},
	}
}

func TestRoundTrip(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	loaded, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, records, loaded)
}

func TestRoundTripDropsSubSecondPrecision(t *testing.T) {
	records := sampleRecords()[:1]
	records[0].LastUpdated = time.Date(2026, 8, 1, 9, 30, 0, 123456789, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	loaded, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC), loaded[0].LastUpdated)
}

func TestHeaderIsStable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	require.Equal(t, "Firm Name", strings.SplitN(header, ",", 2)[0])
	require.Equal(t, len(Columns), len(strings.Split(header, ",")))
}

func TestReadRejectsColumnDrift(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Firm Name,Account Size\nApex,$50k\n"))
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRecords())
	require.Equal(t, 2, s.Total)
	require.Equal(t, 1, s.ByStatus[rules.StatusOK])
	require.Equal(t, 1, s.ByStatus[rules.StatusLoginRequired])
	require.Equal(t, 1, s.ByFirm["Apex Trader Funding"])
}
