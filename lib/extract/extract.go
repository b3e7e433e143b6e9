// Package extract derives trading-rule records from acquired page text.
// Matching is pattern-bank driven: each field has an ordered bank of
// regexes, matches pass a plausibility window, and a deterministic
// default fills in when nothing survives. The engine always produces
// records; precision is traded for completeness and every value carries
// a trace saying whether it was measured or assumed.
package extract

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"propfirm-backend/lib/currency"
	"propfirm-backend/lib/htmlutil"
	"propfirm-backend/lib/rules"
	"propfirm-backend/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("propscrape.lib.extract")

// Plausibility windows. A match outside its field's window is discarded
// no matter how confident the pattern looks.
const (
	sizeWindowMin   = 1_000
	sizeWindowMax   = 10_000_000
	sizeFallbackMin = 5_000
	sizeFallbackMax = 1_000_000
	maxAccountSizes = 10

	targetPctMin = 1.0
	targetPctMax = 20.0
	// dollar targets above half the account are promotional aggregates
	targetDollarShare = 0.5

	drawdownPctMin = 1.0
	drawdownPctMax = 15.0
	// dollar drawdowns above a fifth of the account are not rule values
	drawdownDollarShare = 0.2

	dollarFloor = 100.0

	feeMin = 50.0
	feeMax = 1_000.0

	splitMin     = 50.0
	splitMax     = 95.0
	defaultSplit = 80.0

	// daily loss estimate when no explicit limit is published
	dailyLossShare = 0.5

	// trading day requirements above this are something else entirely
	maxMinDays = 60

	excerptLen     = 120
	diagExcerptLen = 500
)

// substituted when no account size can be found at all
var defaultSizes = []int64{25_000, 50_000, 100_000, 150_000}

// Engine extracts rule records for one firm. It is stateless across
// calls; construct one per site.
type Engine struct {
	firm string
	url  string
	conv currency.Converter
	now  func() time.Time
}

func NewEngine(firm, url string, conv currency.Converter) *Engine {
	return &Engine{firm: firm, url: url, conv: conv, now: time.Now}
}

// Extract runs the full derivation over visible text: account-size
// discovery first, then a complete rule set per discovered size. The
// result is never empty.
func (e *Engine) Extract(ctx context.Context, text string) []rules.Record {
	return e.ExtractSizes(ctx, text, AccountSizes(text))
}

// ExtractSizes derives a rule set per given account-size label, skipping
// discovery. Callers with a known size table for a firm use this to pin
// the sizes while still pattern-matching every other field.
func (e *Engine) ExtractSizes(ctx context.Context, text string, sizes []string) []rules.Record {
	ctx, span := tracer.Start(ctx, "ExtractSizes")
	defer span.End()
	span.SetAttributes(attribute.String("firm", e.firm))

	records := make([]rules.Record, 0, len(sizes))
	for _, label := range sizes {
		records = append(records, e.buildRecord(ctx, label, text))
	}

	slog.InfoContext(ctx, "extraction finished",
		"firm", e.firm, "sizes", len(sizes), "records", len(records))
	return records
}

// ExtractHTML strips markup down to visible text and extracts from
// that.
func (e *Engine) ExtractHTML(ctx context.Context, rawHTML string) ([]rules.Record, error) {
	doc, err := htmlutil.ParseDoc(rawHTML)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, htmlutil.VisibleText(doc)), nil
}

// Placeholder builds the single record emitted when acquisition or
// extraction could not proceed at all. The status is assigned by the
// caller and bypasses the classifier.
func (e *Engine) Placeholder(status rules.Status, note string) rules.Record {
	return rules.Record{
		FirmName:    e.firm,
		AccountSize: "Extraction Failed",
		WebsiteURL:  e.url,
		LastUpdated: e.now().UTC().Truncate(time.Second),
		Status:      status,
		Diagnostics: rules.Diagnostics{Method: "placeholder", Note: note},
	}
}

var (
	sizeTokenJunk = regexp.MustCompile(`[^\d,.$kK]`)
	nonDigits     = regexp.MustCompile(`[^\d]`)
	bareNumbers   = regexp.MustCompile(`[\d,]+`)
)

// AccountSizes discovers account sizes in text and returns them as
// canonical "$N,NNN" labels, deduplicated, ascending, capped. Three
// stages, each only reached when the previous found nothing: the
// pattern bank with the wide window, any bare number in the narrow
// window, fixed industry defaults.
func AccountSizes(text string) []string {
	values := map[int64]bool{}

	for _, p := range accountSizeBank {
		for _, match := range p.re.FindAllString(text, -1) {
			cleaned := sizeTokenJunk.ReplaceAllString(match, "")
			n, ok := sizeValue(cleaned)
			if ok && n >= sizeWindowMin && n <= sizeWindowMax {
				values[n] = true
			}
		}
	}

	if len(values) == 0 {
		slog.Info("no account sizes matched, widening to bare numbers")
		for _, match := range bareNumbers.FindAllString(text, -1) {
			n, ok := textutil.ExtractNumber(match)
			if ok && n >= sizeFallbackMin && n <= sizeFallbackMax {
				values[int64(n)] = true
			}
		}
	}

	if len(values) == 0 {
		slog.Warn("no account sizes detected, substituting defaults")
		for _, n := range defaultSizes {
			values[n] = true
		}
	}

	sorted := make([]int64, 0, len(values))
	for n := range values {
		sorted = append(sorted, n)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if len(sorted) > maxAccountSizes {
		sorted = sorted[:maxAccountSizes]
	}

	labels := make([]string, 0, len(sorted))
	for _, n := range sorted {
		labels = append(labels, currency.FormatUSD(float64(n)))
	}
	return labels
}

func sizeValue(cleaned string) (int64, bool) {
	if strings.ContainsAny(cleaned, "kK") {
		digits := nonDigits.ReplaceAllString(cleaned, "")
		if digits == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, false
		}
		return n * 1000, true
	}
	n, ok := textutil.ExtractNumber(cleaned)
	if !ok {
		return 0, false
	}
	return int64(n), true
}

// candidate is one surviving match for a numeric field.
type candidate struct {
	amount  float64
	pattern string
	excerpt string
}

func (e *Engine) buildRecord(ctx context.Context, label, text string) rules.Record {
	accountUSD, ok := e.conv.ParseToUSD(label)
	if !ok {
		accountUSD = 0
	}

	var traces []rules.FieldTrace
	trace := func(t rules.FieldTrace) {
		traces = append(traces, t)
	}

	target, t := e.profitTarget(text, accountUSD)
	trace(t)
	drawdown, t := e.maxDrawdown(text, accountUSD)
	trace(t)
	dailyLoss, t := e.dailyLoss(text, accountUSD, drawdown)
	trace(t)
	split, t := e.profitSplit(text)
	trace(t)
	evalFee, resetFee, feeTraces := e.fees(text)
	traces = append(traces, feeTraces...)

	lower := strings.ToLower(text)
	ddKind, classified := rules.ClassifyDrawdownKind(lower)
	if !classified {
		ddKind = rules.DrawdownTrailing
	}
	trace(rules.FieldTrace{Field: "drawdown_kind", Defaulted: !classified})

	cadence, classified := rules.ClassifyPayoutCadence(lower)
	if !classified {
		cadence = rules.PayoutMonthly
	}
	trace(rules.FieldTrace{Field: "payout_cadence", Defaulted: !classified})

	platform, classified := rules.ClassifyPlatform(lower)
	if !classified {
		platform = rules.PlatformMultiple
	}
	broker, classified := rules.ClassifyBroker(lower)
	if !classified {
		broker = rules.BrokerMultiple
	}

	rec := rules.Record{
		FirmName:       e.firm,
		AccountSize:    label,
		AccountSizeUSD: accountUSD,
		WebsiteURL:     e.url,
		Broker:         broker,
		Platform:       platform,
		LastUpdated:    e.now().UTC().Truncate(time.Second),

		EvaluationDrawdownKind: ddKind,
		PayoutCadence:          cadence,

		ProfitSplitPercent: rules.Float(split),
		EvaluationFeeUSD:   evalFee,
		ResetFeeUSD:        resetFee,
	}

	if accountUSD > 0 {
		rec.EvaluationTargetUSD = rules.Float(target)
		rec.EvaluationMaxDrawdownUSD = rules.Float(drawdown)
		rec.EvaluationDailyLossUSD = rules.Float(dailyLoss)
		// funded limits are not published separately on most sites,
		// mirror the evaluation phase
		rec.FundedMaxDrawdownUSD = rules.Float(drawdown)
		rec.FundedDailyLossUSD = rules.Float(dailyLoss)
		rec.FundedDrawdownKind = ddKind
	}

	if days, t := e.minTradingDays(lower); days != nil {
		rec.EvaluationMinDays = days
		trace(t)
	}
	if consistent, t := e.consistencyRule(lower); consistent != nil {
		rec.EvaluationConsistency = consistent
		trace(t)
	}

	rec.Diagnostics = rules.Diagnostics{
		Method:  "pattern_matching",
		Note:    "funded limits mirrored from evaluation phase",
		Excerpt: head(text, diagExcerptLen),
		Fields:  traces,
	}
	rec.Status = rules.ClassifyStatus(rec)
	return rec
}

// scanAmounts runs a bank over the text, converting each match through
// accept, which applies the field's plausibility window and turns
// percentages into absolute amounts.
func scanAmounts(bank []namedPattern, text string, accept func(match string, n float64) (float64, bool)) []candidate {
	var out []candidate
	for _, p := range bank {
		for _, match := range p.re.FindAllString(text, -1) {
			n, ok := textutil.ExtractNumber(match)
			if !ok {
				continue
			}
			amount, ok := accept(match, n)
			if !ok {
				continue
			}
			out = append(out, candidate{amount: amount, pattern: p.name, excerpt: clip(match)})
		}
	}
	return out
}

func pickSmallest(cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.amount < best.amount {
			best = c
		}
	}
	return best, true
}

func pickLargest(cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.amount > best.amount {
			best = c
		}
	}
	return best, true
}

func dollarAmount(match string) bool {
	lower := strings.ToLower(match)
	return strings.Contains(lower, "$") || strings.Contains(lower, "usd")
}

// profitTarget picks the smallest plausible target: the strictest
// figure is the one that matters for passing an evaluation, and small
// numbers near target keywords are more often literal rule values than
// promotional aggregates.
func (e *Engine) profitTarget(text string, accountUSD float64) (float64, rules.FieldTrace) {
	cands := scanAmounts(profitTargetBank, text, func(match string, n float64) (float64, bool) {
		if textutil.IsPercentage(match) {
			if n >= targetPctMin && n <= targetPctMax {
				return accountUSD * n / 100, true
			}
			return 0, false
		}
		if dollarAmount(match) && n >= dollarFloor && n <= accountUSD*targetDollarShare {
			return n, true
		}
		return 0, false
	})
	if best, ok := pickSmallest(cands); ok {
		return best.amount, rules.FieldTrace{
			Field: "evaluation_target_usd", Pattern: best.pattern, Excerpt: best.excerpt,
		}
	}
	return accountUSD * tieredTargetPct(accountUSD) / 100,
		rules.FieldTrace{Field: "evaluation_target_usd", Defaulted: true}
}

// maxDrawdown picks the smallest plausible drawdown, the most
// restrictive published limit.
func (e *Engine) maxDrawdown(text string, accountUSD float64) (float64, rules.FieldTrace) {
	cands := scanAmounts(drawdownBank, text, drawdownAccept(accountUSD))
	if best, ok := pickSmallest(cands); ok {
		return best.amount, rules.FieldTrace{
			Field: "evaluation_max_drawdown_usd", Pattern: best.pattern, Excerpt: best.excerpt,
		}
	}
	return accountUSD * tieredDrawdownPct(accountUSD) / 100,
		rules.FieldTrace{Field: "evaluation_max_drawdown_usd", Defaulted: true}
}

// dailyLoss tries its own bank first; absent an explicit limit it is
// estimated as half the max drawdown. The estimate is a declared
// approximation, always marked defaulted.
func (e *Engine) dailyLoss(text string, accountUSD, maxDrawdown float64) (float64, rules.FieldTrace) {
	cands := scanAmounts(dailyLossBank, text, drawdownAccept(accountUSD))
	if best, ok := pickSmallest(cands); ok {
		return best.amount, rules.FieldTrace{
			Field: "evaluation_daily_loss_usd", Pattern: best.pattern, Excerpt: best.excerpt,
		}
	}
	return maxDrawdown * dailyLossShare,
		rules.FieldTrace{Field: "evaluation_daily_loss_usd", Defaulted: true}
}

func drawdownAccept(accountUSD float64) func(match string, n float64) (float64, bool) {
	return func(match string, n float64) (float64, bool) {
		if textutil.IsPercentage(match) {
			if n >= drawdownPctMin && n <= drawdownPctMax {
				return accountUSD * n / 100, true
			}
			return 0, false
		}
		if dollarAmount(match) && n >= dollarFloor && n <= accountUSD*drawdownDollarShare {
			return n, true
		}
		return 0, false
	}
}

// profitSplit picks the largest plausible split: the
// favorable-to-trader figure is the headline number firms publish.
// Ratio forms are accepted only when the two parts sum to 100.
func (e *Engine) profitSplit(text string) (float64, rules.FieldTrace) {
	var cands []candidate
	for _, p := range splitBank {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			var traderShare float64
			if p.ratio {
				a, errA := strconv.ParseFloat(m[1], 64)
				b, errB := strconv.ParseFloat(m[2], 64)
				if errA != nil || errB != nil || a+b != 100 {
					continue
				}
				traderShare = a
			} else {
				n, err := strconv.ParseFloat(m[1], 64)
				if err != nil {
					continue
				}
				traderShare = n
			}
			if traderShare < splitMin || traderShare > splitMax {
				continue
			}
			cands = append(cands, candidate{amount: traderShare, pattern: p.name, excerpt: clip(m[0])})
		}
	}
	if best, ok := pickLargest(cands); ok {
		return best.amount, rules.FieldTrace{
			Field: "profit_split_percent", Pattern: best.pattern, Excerpt: best.excerpt,
		}
	}
	return defaultSplit, rules.FieldTrace{Field: "profit_split_percent", Defaulted: true}
}

// fees attributes each plausible fee match to evaluation or reset by
// keyword; the first unattributed fee becomes the evaluation fee. Fees
// have no default, absence stays nil.
func (e *Engine) fees(text string) (evalFee, resetFee *float64, traces []rules.FieldTrace) {
	for _, p := range feeBank {
		for _, match := range p.re.FindAllString(text, -1) {
			n, ok := textutil.ExtractNumber(match)
			if !ok || n < feeMin || n > feeMax {
				continue
			}
			lower := strings.ToLower(match)
			switch {
			case strings.Contains(lower, "reset"):
				if resetFee == nil {
					resetFee = rules.Float(n)
					traces = append(traces, rules.FieldTrace{
						Field: "reset_fee_usd", Pattern: p.name, Excerpt: clip(match),
					})
				}
			default:
				if evalFee == nil {
					evalFee = rules.Float(n)
					traces = append(traces, rules.FieldTrace{
						Field: "evaluation_fee_usd", Pattern: p.name, Excerpt: clip(match),
					})
				}
			}
		}
	}
	return evalFee, resetFee, traces
}

func tieredTargetPct(accountUSD float64) float64 {
	switch {
	case accountUSD >= 100_000:
		return 8
	case accountUSD >= 50_000:
		return 10
	default:
		return 12
	}
}

// minTradingDays reads a minimum trading day requirement. There is no
// industry default, absent means unknown.
func (e *Engine) minTradingDays(text string) (*int, rules.FieldTrace) {
	m := minDaysContext.FindString(text)
	if m == "" {
		return nil, rules.FieldTrace{}
	}
	n, ok := textutil.ExtractDays(m)
	if !ok || n < 1 || n > maxMinDays {
		return nil, rules.FieldTrace{}
	}
	return rules.Int(n), rules.FieldTrace{
		Field: "evaluation_min_days", Pattern: "min-days-context", Excerpt: clip(m),
	}
}

// consistencyRule reads whether a consistency rule applies. A bare
// mention with no yes/no qualifier counts as applying.
func (e *Engine) consistencyRule(text string) (*bool, rules.FieldTrace) {
	m := consistencyContext.FindString(text)
	if m == "" {
		return nil, rules.FieldTrace{}
	}
	v, ok := textutil.ParseBool(m)
	if !ok {
		v = true
	}
	return rules.Bool(v), rules.FieldTrace{
		Field: "evaluation_consistency", Pattern: "consistency-context", Excerpt: clip(m),
	}
}

func tieredDrawdownPct(accountUSD float64) float64 {
	switch {
	case accountUSD >= 100_000:
		return 5
	case accountUSD >= 50_000:
		return 6
	default:
		return 8
	}
}

func clip(match string) string {
	s := textutil.CleanText(match)
	if len(s) > excerptLen {
		s = s[:excerptLen]
	}
	return s
}

func head(text string, n int) string {
	s := textutil.CleanText(text)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
