package discovery

import (
	"context"
	"testing"

	"propfirm-backend/lib/htmlutil"

	"github.com/stretchr/testify/require"
)

func TestRankPagesOrdersByRelevance(t *testing.T) {
	anchors := []htmlutil.Anchor{
		{Name: "About Us", Href: "/about"},
		{Name: "Pricing Plans", Href: "/pricing"},
		{Name: "FAQ", Href: "/faq"},
	}

	ranked := RankPages(context.Background(), "https://example.com/", anchors)

	require.NotEmpty(t, ranked)
	require.Equal(t, "https://example.com/pricing", ranked[0].URL)
	for _, link := range ranked {
		require.NotEqual(t, "https://example.com/about", link.URL,
			"about page should score below the inclusion threshold")
	}
}

func TestRankPagesDiscardsCrossOrigin(t *testing.T) {
	anchors := []htmlutil.Anchor{
		{Name: "Pricing", Href: "https://other.example.net/pricing"},
		{Name: "Challenge Rules", Href: "/challenge"},
	}

	ranked := RankPages(context.Background(), "https://example.com/", anchors)

	require.Len(t, ranked, 1)
	require.Equal(t, "https://example.com/challenge", ranked[0].URL)
}

func TestRankPagesCapsFanOut(t *testing.T) {
	var anchors []htmlutil.Anchor
	paths := []string{
		"/pricing", "/challenge", "/evaluation", "/accounts", "/rules",
		"/funded", "/drawdown", "/fees", "/plans", "/profit-target",
	}
	for _, p := range paths {
		anchors = append(anchors, htmlutil.Anchor{Name: "Challenge Pricing", Href: p})
	}

	ranked := RankPages(context.Background(), "https://example.com/", anchors)
	require.Len(t, ranked, 8)
}

func TestRankPagesStableOnTies(t *testing.T) {
	anchors := []htmlutil.Anchor{
		{Name: "Funded", Href: "/funded-a"},
		{Name: "Funded", Href: "/funded-b"},
	}

	ranked := RankPages(context.Background(), "https://example.com/", anchors)
	require.Len(t, ranked, 2)
	require.Equal(t, "https://example.com/funded-a", ranked[0].URL)
	require.Equal(t, "https://example.com/funded-b", ranked[1].URL)
}

func TestScoreSignalsAreAdditive(t *testing.T) {
	// anchor keyword + url keyword + path pattern + priority term
	withEverything := Score("Pricing Plans", "https://example.com/pricing")
	anchorOnly := Score("Pricing Plans", "https://example.com/x")
	require.Greater(t, withEverything, anchorOnly)

	require.Less(t, Score("About Us", "https://example.com/about"), 5)
}
