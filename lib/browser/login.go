package browser

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// Known help/support domains render "sign in" widgets that have nothing
// to do with the content being scraped, so login detection is skipped
// for them entirely.
var HelpDomainAllowlist = []string{
	"support.apextraderfunding.com",
	"support.lucidtrading.com",
	"help.tradeify.co",
	"help.myfundedfutures.com",
	"helpfutures.fundednext.com",
	"help.alpha-futures.com",
	"intercom.help",
	"help.blueguardianfutures.com",
	"support.thetradingpit.com",
	"knowledge.thelegendstrading.com",
	"helpfutures.e8markets.com",
	"zendesk.com",
}

// Selectors strict enough to avoid flagging pages that merely carry a
// "log in" link in the corner.
var loginSelectors = []string{
	`form[action*="login"]`,
	`form[action*="signin"]`,
	`.login-form`,
	`.signin-form`,
	`input[name="username"]`,
	`input[type="password"]`,
}

var loginTitleKeywords = []string{"login", "log in", "sign in", "authenticate"}

var loginPathPatterns = []string{"/login", "/signin", "/auth/login", "/authentication"}

var accessDeniedPhrases = []string{
	"access denied",
	"unauthorized",
	"please log in",
	"you must be logged in",
	"authentication required",
}

// IsHelpDomain reports whether the URL belongs to the allow-list of
// help/support domains exempt from login detection.
func IsHelpDomain(pageURL string) bool {
	for _, domain := range HelpDomainAllowlist {
		if strings.Contains(pageURL, domain) {
			return true
		}
	}
	return false
}

// titlePrimarilyLogin matches only titles that are ABOUT logging in
// ("Sign In", "Login | Acme"), not titles that merely mention it.
func titlePrimarilyLogin(title string) bool {
	title = strings.ToLower(strings.TrimSpace(title))
	for _, keyword := range loginTitleKeywords {
		if title == keyword || strings.HasPrefix(title, keyword+" ") {
			return true
		}
	}
	return false
}

// DetectLoginWall reports whether the session's current page is a login
// wall. Errors while probing individual selectors are treated as "not
// visible" rather than propagated, matching the tier failure semantics.
func DetectLoginWall(ctx context.Context, s Session) bool {
	pageURL, err := s.Location(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to read page location", "err", err)
		return false
	}

	if IsHelpDomain(pageURL) {
		slog.InfoContext(ctx, "skipping login detection for help domain", "url", pageURL)
		return false
	}

	for _, selector := range loginSelectors {
		visible, err := s.Visible(ctx, selector)
		if err != nil {
			continue
		}
		if visible {
			slog.WarnContext(ctx, "login wall detected", "selector", selector, "url", pageURL)
			return true
		}
	}

	title, err := s.Title(ctx)
	if err == nil && titlePrimarilyLogin(title) {
		slog.WarnContext(ctx, "login wall detected", "title", title, "url", pageURL)
		return true
	}

	if parsed, err := url.Parse(pageURL); err == nil {
		path := strings.ToLower(parsed.Path)
		for _, pattern := range loginPathPatterns {
			if strings.Contains(path, pattern) {
				slog.WarnContext(ctx, "login wall detected", "path", path, "url", pageURL)
				return true
			}
		}
	}

	body, err := s.Text(ctx)
	if err == nil {
		bodyLower := strings.ToLower(body)
		for _, phrase := range accessDeniedPhrases {
			if strings.Contains(bodyLower, phrase) {
				slog.WarnContext(ctx, "login wall detected", "phrase", phrase, "url", pageURL)
				return true
			}
		}
	}

	return false
}
