// Package rules holds the typed output of an extraction run: one
// immutable record per (firm, account size) with a coarse status.
package rules

import "time"

type DrawdownKind string

const (
	DrawdownTrailing DrawdownKind = "TRAILING"
	DrawdownStatic   DrawdownKind = "STATIC"
	DrawdownEndOfDay DrawdownKind = "END_OF_DAY"
	DrawdownHybrid   DrawdownKind = "HYBRID"
)

type PayoutCadence string

const (
	PayoutWeekly   PayoutCadence = "WEEKLY"
	PayoutBiweekly PayoutCadence = "BIWEEKLY"
	PayoutMonthly  PayoutCadence = "MONTHLY"
	PayoutOnDemand PayoutCadence = "ON_DEMAND"
)

type Status string

const (
	StatusOK             Status = "OK"
	StatusMissingData    Status = "MISSING_DATA"
	StatusLoginRequired  Status = "LOGIN_REQUIRED"
	StatusFailed         Status = "FAILED"
	StatusNotImplemented Status = "NOT_IMPLEMENTED"
)

type Platform string

const (
	PlatformMT4         Platform = "MT4"
	PlatformMT5         Platform = "MT5"
	PlatformCTrader     Platform = "CTRADER"
	PlatformNinjaTrader Platform = "NINJA_TRADER"
	PlatformTradingView Platform = "TRADING_VIEW"
	PlatformProprietary Platform = "PROPRIETARY"
	PlatformMultiple    Platform = "MULTIPLE"
	PlatformUnknown     Platform = "UNKNOWN"
)

type Broker string

const (
	BrokerPurpleTrading Broker = "PURPLE_TRADING"
	BrokerEightcap      Broker = "EIGHTCAP"
	BrokerMatchTrader   Broker = "MATCH_TRADER"
	BrokerTopstep       Broker = "TOPSTEP"
	BrokerRithmic       Broker = "RITHMIC"
	BrokerCQG           Broker = "CQG"
	BrokerMultiple      Broker = "MULTIPLE"
	BrokerUnknown       Broker = "UNKNOWN"
)

// FieldTrace records how one field of a record came to be: matched by a
// named pattern (with the text excerpt that matched) or substituted by
// an industry default.
type FieldTrace struct {
	Field     string `json:"field"`
	Defaulted bool   `json:"defaulted"`
	Pattern   string `json:"pattern,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
}

// Diagnostics is the free-form provenance blob attached to each record.
type Diagnostics struct {
	Method  string       `json:"method"`
	Note    string       `json:"note,omitempty"`
	Excerpt string       `json:"excerpt,omitempty"`
	Fields  []FieldTrace `json:"fields,omitempty"`
}

// Record is the unit of output, one per (firm, account size). Optional
// numeric fields are nil when nothing could be measured or assumed.
// A record is never mutated after its status is assigned.
type Record struct {
	FirmName       string
	AccountSize    string // display label, e.g. "$50,000"
	AccountSizeUSD float64
	WebsiteURL     string
	Broker         Broker   // empty when unclassified
	Platform       Platform // empty when unclassified
	LastUpdated    time.Time
	Status         Status

	// evaluation phase
	EvaluationTargetUSD      *float64
	EvaluationMaxDrawdownUSD *float64
	EvaluationDailyLossUSD   *float64
	EvaluationDrawdownKind   DrawdownKind
	EvaluationMinDays        *int
	EvaluationConsistency    *bool

	// funded phase, independently optional
	FundedMaxDrawdownUSD *float64
	FundedDailyLossUSD   *float64
	FundedDrawdownKind   DrawdownKind

	// payout
	ProfitSplitPercent *float64
	PayoutCadence      PayoutCadence
	MinPayoutUSD       *float64

	// fees
	EvaluationFeeUSD *float64
	ResetFeeUSD      *float64

	Diagnostics Diagnostics
}

// ClassifyStatus counts how many critical fields are missing. At most
// one of {profit target, max drawdown, profit split} may be nil for a
// record to be OK. LOGIN_REQUIRED and FAILED are assigned upstream by
// the acquisition layer and never pass through here.
func ClassifyStatus(r Record) Status {
	missing := 0
	if r.EvaluationTargetUSD == nil {
		missing++
	}
	if r.EvaluationMaxDrawdownUSD == nil {
		missing++
	}
	if r.ProfitSplitPercent == nil {
		missing++
	}
	if missing > 1 {
		return StatusMissingData
	}
	return StatusOK
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
func Bool(v bool) *bool        { return &v }
