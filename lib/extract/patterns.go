package extract

import "regexp"

// namedPattern is one entry of a pattern bank. Banks are ordered: the
// listed order is the trial order, and the name surfaces in the
// record's field traces so any extracted value can be attributed to the
// exact pattern that produced it.
type namedPattern struct {
	name string
	re   *regexp.Regexp
}

// accountSizeBank finds candidate account sizes in page text. The
// broadest patterns sit last; the plausibility window does the real
// filtering.
var accountSizeBank = []namedPattern{
	{"size-dollar-amount", regexp.MustCompile(`\$[\d,]+(?:,\d{3})*(?:\.\d{2})?`)},
	{"size-amount-with-code", regexp.MustCompile(`(?i)[\d,]+(?:,\d{3})*\s*(?:USD|\$|dollars?)`)},
	{"size-keyword-then-number", regexp.MustCompile(`(?i)(?:account|size|capital|challenge|plan).*?[\d,]+`)},
	{"size-k-shorthand", regexp.MustCompile(`(?i)[\d,]+\s*(?:k|thousand)`)},
	{"size-loose-currency", regexp.MustCompile(`(?i)(?:\$|USD\s*)?[\d,]+(?:,\d{3})*(?:\s*(?:USD|dollars?))?`)},
	{"size-compact-k", regexp.MustCompile(`[\d]{2,3}[kK]`)},
	{"size-number-then-keyword", regexp.MustCompile(`(?i)[\d,]+\s*(?:account|size|challenge|plan)`)},
}

var profitTargetBank = []namedPattern{
	{"target-keyword-then-value", regexp.MustCompile(`(?i)(?:profit|target|goal|objective).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"target-value-then-keyword", regexp.MustCompile(`(?i)[\d,]+(?:\.\d+)?[%$]?.*?(?:profit|target|goal)`)},
	{"target-reach-verb", regexp.MustCompile(`(?i)(?:reach|achieve|make|earn).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"target-phase-one", regexp.MustCompile(`(?i)(?:phase\s*1|step\s*1|evaluation).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"target-percent-of-balance", regexp.MustCompile(`(?i)[\d,]+(?:\.\d+)?%.*?(?:of|from).*?(?:balance|account)`)},
	{"target-minimum", regexp.MustCompile(`(?i)(?:minimum|min).*?(?:profit|target).*?[\d,]+(?:\.\d+)?[%$]?`)},
}

var drawdownBank = []namedPattern{
	{"dd-keyword-then-value", regexp.MustCompile(`(?i)(?:drawdown|loss|risk|dd).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"dd-value-then-keyword", regexp.MustCompile(`(?i)[\d,]+(?:\.\d+)?[%$]?.*?(?:drawdown|loss|risk|dd)`)},
	{"dd-qualifier", regexp.MustCompile(`(?i)(?:max|maximum|daily|trailing|static).*?(?:loss|drawdown|dd).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"dd-stop-limit", regexp.MustCompile(`(?i)(?:stop|limit).*?(?:loss|drawdown).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"dd-breach", regexp.MustCompile(`(?i)(?:breach|violate).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"dd-percent-of-balance", regexp.MustCompile(`(?i)[\d,]+(?:\.\d+)?%.*?(?:of|from).*?(?:balance|equity|account)`)},
}

var dailyLossBank = []namedPattern{
	{"daily-keyword-then-value", regexp.MustCompile(`(?i)(?:daily|intraday)\s*(?:loss|drawdown|dd|limit).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"daily-max-qualifier", regexp.MustCompile(`(?i)(?:max|maximum)\s*daily.*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"daily-value-then-keyword", regexp.MustCompile(`(?i)[\d,]+(?:\.\d+)?[%$]?\s*(?:daily|per day)\s*(?:loss|limit)`)},
	{"daily-lose-verb", regexp.MustCompile(`(?i)(?:lose|losing).*?(?:per day|in a day|daily).*?[\d,]+(?:\.\d+)?[%$]?`)},
	{"daily-percent", regexp.MustCompile(`(?i)[\d,]+(?:\.\d+)?%\s*daily`)},
}

// splitPattern is a bank entry for profit splits. Ratio patterns carry
// two capture groups whose parts must sum to 100.
type splitPattern struct {
	name  string
	re    *regexp.Regexp
	ratio bool
}

var splitBank = []splitPattern{
	{"split-keyword-then-percent", regexp.MustCompile(`(?i)(?:split|share|profit|payout).*?(\d+(?:\.\d+)?)%`), false},
	{"split-percent-then-keyword", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)%.*?(?:split|share|profit|payout)`), false},
	{"split-trader-keeps", regexp.MustCompile(`(?i)(?:you|trader|keep|receive|get).*?(\d+(?:\.\d+)?)%`), false},
	{"split-percent-to-trader", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)%.*?(?:to|for).*?(?:you|trader)`), false},
	{"split-keyword-ratio", regexp.MustCompile(`(?i)(?:profit|payout).*?(\d+(?:\.\d+)?)/(\d+(?:\.\d+)?)`), true},
	{"split-bare-ratio", regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[:/]\s*(\d+(?:\.\d+)?)`), true},
}

var feeBank = []namedPattern{
	{"fee-keyword-then-value", regexp.MustCompile(`(?i)(?:fee|cost|price|payment|charge).*?\$?[\d,]+(?:\.\d+)?`)},
	{"fee-value-then-keyword", regexp.MustCompile(`(?i)\$?[\d,]+(?:\.\d+)?.*?(?:fee|cost|price|payment|charge)`)},
	{"fee-context", regexp.MustCompile(`(?i)(?:registration|evaluation|challenge|monthly|reset).*?\$?[\d,]+(?:\.\d+)?`)},
	{"fee-one-time", regexp.MustCompile(`(?i)(?:one.time|onetime|initial).*?\$?[\d,]+(?:\.\d+)?`)},
	{"fee-pay-verb", regexp.MustCompile(`(?i)(?:pay|payment|cost).*?\$?[\d,]+(?:\.\d+)?`)},
}

// Context windows for the prose-only fields. These locate the relevant
// clause; textutil does the value parsing.
var (
	minDaysContext     = regexp.MustCompile(`(?i)(?:minimum|at least)[^.\n]{0,40}\d+\s*(?:trading\s+)?days?|\d+\s*(?:trading\s+)?days?\s+minimum`)
	consistencyContext = regexp.MustCompile(`(?i)consistency\s*(?:rule|requirement)?[^.\n]{0,60}`)
)
