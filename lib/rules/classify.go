package rules

import "strings"

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// ClassifyDrawdownKind maps prose like "trailing drawdown" or "end of
// day balance" onto a drawdown kind.
func ClassifyDrawdownKind(text string) (DrawdownKind, bool) {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, "trailing", "trail"):
		return DrawdownTrailing, true
	case containsAny(text, "static", "fixed", "absolute"):
		return DrawdownStatic, true
	case containsAny(text, "eod", "end of day", "end-of-day", "daily close", "close of day"):
		return DrawdownEndOfDay, true
	case containsAny(text, "hybrid", "combination", "mixed"):
		return DrawdownHybrid, true
	}
	return "", false
}

// ClassifyPayoutCadence maps payout prose onto a cadence. "weekly" only
// counts as plain weekly when no bi-weekly qualifier is nearby.
func ClassifyPayoutCadence(text string) (PayoutCadence, bool) {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, "weekly", "week", "7 days"):
		if containsAny(text, "bi-weekly", "biweekly", "bi weekly", "2 weeks", "two weeks", "14 days") {
			return PayoutBiweekly, true
		}
		return PayoutWeekly, true
	case containsAny(text, "monthly", "month", "30 days"):
		return PayoutMonthly, true
	case containsAny(text, "on demand", "on-demand", "instant", "immediate", "anytime"):
		return PayoutOnDemand, true
	case containsAny(text, "2 weeks", "two weeks", "14 days"):
		return PayoutBiweekly, true
	}
	return "", false
}

func ClassifyPlatform(text string) (Platform, bool) {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, "mt4", "metatrader 4"):
		return PlatformMT4, true
	case containsAny(text, "mt5", "metatrader 5"):
		return PlatformMT5, true
	case containsAny(text, "ctrader", "c-trader"):
		return PlatformCTrader, true
	case containsAny(text, "ninjatrader", "ninja trader"):
		return PlatformNinjaTrader, true
	case containsAny(text, "tradingview", "trading view"):
		return PlatformTradingView, true
	case containsAny(text, "proprietary", "own platform"):
		return PlatformProprietary, true
	case containsAny(text, "multiple", "various", "several"):
		return PlatformMultiple, true
	}
	return PlatformUnknown, false
}

func ClassifyBroker(text string) (Broker, bool) {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "purple"):
		return BrokerPurpleTrading, true
	case containsAny(text, "eightcap", "8cap"):
		return BrokerEightcap, true
	case containsAny(text, "match trader", "matchtrader"):
		return BrokerMatchTrader, true
	case strings.Contains(text, "topstep"):
		return BrokerTopstep, true
	case strings.Contains(text, "rithmic"):
		return BrokerRithmic, true
	case strings.Contains(text, "cqg"):
		return BrokerCQG, true
	case containsAny(text, "multiple", "various", "several"):
		return BrokerMultiple, true
	}
	return BrokerUnknown, false
}
