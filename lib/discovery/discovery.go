// Package discovery ranks a page's outbound links by how likely they
// are to lead to pricing / evaluation / drawdown content. Scoring is
// additive and keyword based on purpose: every score is explainable
// from the tables below.
package discovery

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"propfirm-backend/lib/htmlutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("propscrape.lib.discovery")

// Keywords that strongly indicate trading-rule pages.
var highPriorityKeywords = []string{
	"pricing", "price", "cost", "fee", "plan", "package",
	"challenge", "evaluation", "account", "size", "rule",
	"funded", "profit", "target", "drawdown", "risk",
}

var mediumPriorityKeywords = []string{
	"faq", "help", "support", "guide", "how", "what",
	"trading", "trader", "fund", "capital", "balance",
}

var pathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/pricing`), regexp.MustCompile(`/price`),
	regexp.MustCompile(`/cost`), regexp.MustCompile(`/fee`),
	regexp.MustCompile(`/plan`), regexp.MustCompile(`/challenge`),
	regexp.MustCompile(`/evaluation`), regexp.MustCompile(`/account`),
	regexp.MustCompile(`/rule`), regexp.MustCompile(`/funded`),
	regexp.MustCompile(`/profit`), regexp.MustCompile(`/target`),
	regexp.MustCompile(`/drawdown`), regexp.MustCompile(`/faq`),
	regexp.MustCompile(`/help`), regexp.MustCompile(`/guide`),
	regexp.MustCompile(`/support`),
}

var priorityPageTerms = []string{"pricing", "challenge", "evaluation", "account"}

const (
	anchorHighWeight = 10
	urlHighWeight    = 8
	anchorMedWeight  = 3
	urlMedWeight     = 2
	pathPatternBonus = 15
	priorityBonus    = 20

	// links scoring below this are discarded
	inclusionThreshold = 5

	// fan-out cap on the returned shortlist
	maxResults = 8
)

// ScoredLink is one candidate subpage with the score it accumulated.
type ScoredLink struct {
	URL   string
	Text  string
	Score int
}

// Score computes the relevance score for a single link. Exported so the
// keyword tables can be exercised link by link.
func Score(anchorText, absoluteURL string) int {
	score := 0
	textLower := strings.ToLower(anchorText)
	urlLower := strings.ToLower(absoluteURL)

	for _, keyword := range highPriorityKeywords {
		if strings.Contains(textLower, keyword) {
			score += anchorHighWeight
		}
		if strings.Contains(urlLower, keyword) {
			score += urlHighWeight
		}
	}
	for _, keyword := range mediumPriorityKeywords {
		if strings.Contains(textLower, keyword) {
			score += anchorMedWeight
		}
		if strings.Contains(urlLower, keyword) {
			score += urlMedWeight
		}
	}
	for _, pattern := range pathPatterns {
		if pattern.MatchString(urlLower) {
			score += pathPatternBonus
		}
	}
	for _, term := range priorityPageTerms {
		if strings.Contains(urlLower, term) {
			score += priorityBonus
			break
		}
	}
	return score
}

// RankPages scores every anchor against the keyword tables and returns
// an ordered shortlist of absolute, same-origin URLs. Ties keep
// encounter order.
func RankPages(ctx context.Context, baseURL string, anchors []htmlutil.Anchor) []ScoredLink {
	ctx, span := tracer.Start(ctx, "RankPages")
	defer span.End()

	base, err := url.Parse(baseURL)
	if err != nil {
		slog.WarnContext(ctx, "unparseable base url", "url", baseURL, "err", err)
		return nil
	}

	var candidates []ScoredLink
	seen := map[string]bool{}

	for _, anchor := range anchors {
		if anchor.Href == "" || anchor.Name == "" {
			continue
		}
		ref, err := url.Parse(anchor.Href)
		if err != nil {
			continue
		}
		full := base.ResolveReference(ref)

		// cross-origin links are always discarded
		if full.Host != "" && full.Host != base.Host {
			continue
		}

		absolute := full.String()
		if seen[absolute] {
			continue
		}
		seen[absolute] = true

		score := Score(anchor.Name, absolute)
		if score < inclusionThreshold {
			continue
		}
		candidates = append(candidates, ScoredLink{
			URL:   absolute,
			Text:  anchor.Name,
			Score: score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	for i, link := range candidates {
		slog.DebugContext(ctx, "discovered rule page candidate",
			"rank", i+1, "score", link.Score, "text", link.Text, "url", link.URL)
	}
	return candidates
}
