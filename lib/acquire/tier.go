package acquire

// Tier is one stage of the strict-priority fallback chain. Each tier is
// attempted only when the previous one yielded nothing usable.
type Tier int

const (
	// plain HTTP GET, no script execution
	TierStatic Tier = iota
	// headless-browser render plus discovered-subpage crawl
	TierRendered
	// chat-widget / search-box probing
	TierProbe
	// terminal placeholder, manual review needed
	TierManual
)

func (t Tier) String() string {
	switch t {
	case TierStatic:
		return "static"
	case TierRendered:
		return "rendered"
	case TierProbe:
		return "probe"
	case TierManual:
		return "manual"
	}
	return "unknown"
}

// Outcome is what a tier attempt produced.
type Outcome int

const (
	// tier yielded content worth extracting from
	OutcomeUsable Outcome = iota
	// tier yielded nothing, fall through
	OutcomeEmpty
	// a login wall blocks the site, stop immediately
	OutcomeLoginWall
)

// Next is the pure transition function of the chain: given the tier
// just attempted and its outcome, it returns the next tier and whether
// the chain is finished. No tier is ever retried.
func Next(t Tier, o Outcome) (Tier, bool) {
	if o == OutcomeUsable || o == OutcomeLoginWall {
		return t, true
	}
	switch t {
	case TierStatic:
		return TierRendered, false
	case TierRendered:
		return TierProbe, false
	default:
		return TierManual, true
	}
}
