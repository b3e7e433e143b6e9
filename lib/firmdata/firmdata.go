// Package firmdata holds declarative per-firm corrections applied over
// the generic extraction output. Firms whose sites resist pattern
// extraction get their known figures pinned here instead of growing
// bespoke scraping code.
package firmdata

import (
	"log/slog"

	"propfirm-backend/lib/configutil"
	"propfirm-backend/lib/currency"
	"propfirm-backend/lib/rules"
	"propfirm-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

// two firm names this similar (Jaro-Winkler) refer to the same firm
const nameSimilarityThreshold = 0.92

// Firm is one firm's override record. Nil/empty fields leave the
// extracted value alone.
type Firm struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`

	// replaces discovered sizes entirely when set
	AccountSizesUSD []float64 `json:"account_sizes_usd,omitempty"`
	// discovered sizes below this are marketing noise, drop them
	MinAccountSizeUSD *float64 `json:"min_account_size_usd,omitempty"`

	TargetPercent      *float64 `json:"target_percent,omitempty"`
	DrawdownPercent    *float64 `json:"drawdown_percent,omitempty"`
	ProfitSplitPercent *float64 `json:"profit_split_percent,omitempty"`
	EvaluationFeeUSD   *float64 `json:"evaluation_fee_usd,omitempty"`

	Platform rules.Platform `json:"platform,omitempty"`
	Broker   rules.Broker   `json:"broker,omitempty"`
}

type config struct {
	Firms []Firm `json:"firms"`
}

// Registry looks up firm overrides by name, tolerating the spelling
// drift between site lists and marketing names.
type Registry struct {
	firms []Firm
}

func NewRegistry(firms []Firm) Registry {
	return Registry{firms: firms}
}

// Load reads firms.json5 found recursively upward from the working
// directory. A missing file yields an empty registry, not an error.
func Load() (Registry, error) {
	cfg, err := configutil.ReadOptional[config]("firms.json5")
	if err != nil {
		return Registry{}, err
	}
	return NewRegistry(cfg.Firms), nil
}

// Lookup finds the override record for a firm name: exact normalized
// match (including aliases) first, then the most similar name above the
// similarity threshold.
func (r Registry) Lookup(name string) (Firm, bool) {
	normalized := textutil.NormalizeName(name)

	for _, firm := range r.firms {
		if textutil.NormalizeName(firm.Name) == normalized {
			return firm, true
		}
	}

	// aliases are substring matchers so "apex" covers every site name
	// the firm trades under
	for _, firm := range r.firms {
		var aliases []string
		for _, alias := range firm.Aliases {
			if a := textutil.NormalizeName(alias); a != "" {
				aliases = append(aliases, a)
			}
		}
		if textutil.MatchName(name, aliases) {
			return firm, true
		}
	}

	var best Firm
	var bestSimilarity float64
	for _, firm := range r.firms {
		similarity := matchr.JaroWinkler(normalized, textutil.NormalizeName(firm.Name), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = firm
		}
	}
	if bestSimilarity >= nameSimilarityThreshold {
		slog.Debug("fuzzy firm match", "name", name, "matched", best.Name, "similarity", bestSimilarity)
		return best, true
	}
	return Firm{}, false
}

// SizeLabels returns the pinned size table as canonical "$N,NNN"
// labels, empty when the firm has no pinned sizes.
func (f Firm) SizeLabels() []string {
	labels := make([]string, 0, len(f.AccountSizesUSD))
	for _, n := range f.AccountSizesUSD {
		labels = append(labels, currency.FormatUSD(n))
	}
	return labels
}

// Apply rewrites extracted records with the firm's pinned figures.
// Records below the minimum account size are dropped; percentage
// overrides are recomputed against each record's account size; every
// overridden field gets a trace naming this package as the source.
func (f Firm) Apply(records []rules.Record) []rules.Record {
	out := make([]rules.Record, 0, len(records))
	for _, r := range records {
		if f.MinAccountSizeUSD != nil && r.AccountSizeUSD > 0 && r.AccountSizeUSD < *f.MinAccountSizeUSD {
			continue
		}
		out = append(out, f.rewrite(r))
	}
	return out
}

func (f Firm) rewrite(r rules.Record) rules.Record {
	override := func(field string) {
		r.Diagnostics.Fields = append(r.Diagnostics.Fields, rules.FieldTrace{
			Field: field, Pattern: "firm-override",
		})
	}

	if f.TargetPercent != nil && r.AccountSizeUSD > 0 {
		r.EvaluationTargetUSD = rules.Float(r.AccountSizeUSD * *f.TargetPercent / 100)
		override("evaluation_target_usd")
	}
	if f.DrawdownPercent != nil && r.AccountSizeUSD > 0 {
		drawdown := r.AccountSizeUSD * *f.DrawdownPercent / 100
		r.EvaluationMaxDrawdownUSD = rules.Float(drawdown)
		r.FundedMaxDrawdownUSD = rules.Float(drawdown)
		override("evaluation_max_drawdown_usd")
	}
	if f.ProfitSplitPercent != nil {
		r.ProfitSplitPercent = rules.Float(*f.ProfitSplitPercent)
		override("profit_split_percent")
	}
	if f.EvaluationFeeUSD != nil {
		r.EvaluationFeeUSD = rules.Float(*f.EvaluationFeeUSD)
		override("evaluation_fee_usd")
	}
	if f.Platform != "" {
		r.Platform = f.Platform
	}
	if f.Broker != "" {
		r.Broker = f.Broker
	}

	if r.Status == rules.StatusOK || r.Status == rules.StatusMissingData {
		r.Status = rules.ClassifyStatus(r)
	}
	return r
}
