package sitelist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sample = `
sites:
  - name: Apex Trader Funding
    url: https://apextraderfunding.com
    timeout: 45
    notes: heavy cloudflare
  - name: Tradeify
    url: https://tradeify.co
    enabled: false
  - name: MyFundedFutures
    url: https://myfundedfutures.com
`

func TestParse(t *testing.T) {
	sites, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, sites, 3)

	require.Equal(t, "Apex Trader Funding", sites[0].Name)
	require.Equal(t, 45*time.Second, sites[0].Timeout())
	require.True(t, sites[0].IsEnabled())

	require.False(t, sites[1].IsEnabled())

	// omitted fields fall back to defaults
	require.True(t, sites[2].IsEnabled())
	require.Equal(t, 30*time.Second, sites[2].Timeout())
}

func TestParseRejectsIncompleteEntries(t *testing.T) {
	_, err := Parse([]byte("sites:\n  - name: No URL Here\n"))
	require.Error(t, err)
}

func TestEnabled(t *testing.T) {
	sites, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, Enabled(sites), 2)
}
