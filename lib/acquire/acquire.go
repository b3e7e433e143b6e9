// Package acquire turns a target URL into raw page content through a
// strict-priority fallback chain: static fetch, rendered-browser fetch,
// conversational/search probing, terminal placeholder. Tier failures
// are never fatal, they only cause fallthrough.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"propfirm-backend/lib/browser"
	"propfirm-backend/lib/discovery"
	"propfirm-backend/lib/htmlutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("propscrape.lib.acquire")

// ErrLoginRequired is returned when a login wall blocks the site. It is
// a structural failure: the caller records it as a status, no further
// tier is attempted.
var ErrLoginRequired = errors.New("login required")

// ErrExhausted is returned when every tier came up empty.
var ErrExhausted = errors.New("all acquisition tiers exhausted")

const (
	navigateTimeout = 30 * time.Second
	subpageTimeout  = 15 * time.Second
	maxSubpages     = 3
)

// Page is the rendered HTML and plain text of one visited page.
type Page struct {
	URL  string
	HTML string
	Text string
}

// Content is whatever a tier produced for one site.
type Content struct {
	Tier Tier
	// main page first, then discovered subpages
	Pages []Page
	// chat/search probe responses, already deduplicated
	Responses []string
}

func (c Content) Empty() bool {
	return len(c.Pages) == 0 && len(c.Responses) == 0
}

// CombinedHTML concatenates every page's HTML in visit order.
func (c Content) CombinedHTML() string {
	parts := make([]string, 0, len(c.Pages))
	for _, page := range c.Pages {
		parts = append(parts, page.HTML)
	}
	return strings.Join(parts, "\n")
}

// CombinedText concatenates page text and probe responses.
func (c Content) CombinedText() string {
	parts := make([]string, 0, len(c.Pages)+len(c.Responses))
	for _, page := range c.Pages {
		parts = append(parts, page.Text)
	}
	parts = append(parts, c.Responses...)
	return strings.Join(parts, "\n")
}

// Pipeline runs the fallback chain. Both the HTTP client and the
// browser launcher are constructed dependencies so tests can fake them.
type Pipeline struct {
	static   *resty.Client
	launcher browser.Launcher
	usable   func(Content) bool
}

type Option func(*Pipeline)

// WithUsableCheck overrides the predicate deciding whether a tier's
// content is worth stopping on. The default accepts any non-empty
// content; the extraction engine supplies a stricter rule-data check.
func WithUsableCheck(check func(Content) bool) Option {
	return func(p *Pipeline) { p.usable = check }
}

func NewPipeline(static *resty.Client, launcher browser.Launcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		static:   static,
		launcher: launcher,
		usable:   func(c Content) bool { return !c.Empty() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire runs the chain for one target. It returns ErrLoginRequired on
// a login wall, ErrExhausted when every tier came up empty, and content
// tagged with the producing tier otherwise. A single pass only: no tier
// is retried, there is no backoff.
func (p *Pipeline) Acquire(ctx context.Context, target string) (Content, error) {
	ctx, span := tracer.Start(ctx, "Acquire")
	defer span.End()
	span.SetAttributes(attribute.String("url", target))

	tier := TierStatic
	for {
		content, outcome := p.attempt(ctx, tier, target)

		next, done := Next(tier, outcome)
		if done {
			switch outcome {
			case OutcomeLoginWall:
				return Content{}, ErrLoginRequired
			case OutcomeUsable:
				slog.InfoContext(ctx, "acquisition succeeded", "url", target, "tier", tier.String())
				return content, nil
			default:
				return Content{Tier: TierManual}, ErrExhausted
			}
		}
		slog.InfoContext(ctx, "tier yielded nothing, falling through",
			"url", target, "from", tier.String(), "to", next.String())
		tier = next
	}
}

func (p *Pipeline) attempt(ctx context.Context, tier Tier, target string) (Content, Outcome) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("tier:%s", tier.String()))
	defer span.End()

	var content Content
	var err error

	switch tier {
	case TierStatic:
		var body string
		body, err = p.staticFetch(ctx, target)
		if err == nil {
			doc, parseErr := htmlutil.ParseDoc(body)
			text := ""
			if parseErr == nil {
				text = htmlutil.VisibleText(doc)
			}
			content = Content{
				Tier:  TierStatic,
				Pages: []Page{{URL: target, HTML: body, Text: text}},
			}
		}
	case TierRendered:
		content, err = p.renderedFetch(ctx, target)
	case TierProbe:
		content, err = p.probeFetch(ctx, target)
	}

	if errors.Is(err, ErrLoginRequired) {
		return Content{}, OutcomeLoginWall
	}
	if err != nil {
		slog.WarnContext(ctx, "tier attempt failed", "tier", tier.String(), "url", target, "err", err)
		return Content{}, OutcomeEmpty
	}
	if !p.usable(content) {
		return Content{}, OutcomeEmpty
	}
	return content, OutcomeUsable
}

// renderedFetch loads the page in an isolated browser session, expands
// collapsed sections, then crawls up to maxSubpages discovered rule
// pages. A subpage failure is logged and skipped, never propagated.
func (p *Pipeline) renderedFetch(ctx context.Context, target string) (Content, error) {
	session, err := p.launcher.NewSession(ctx)
	if err != nil {
		return Content{}, err
	}
	defer session.Close()

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	err = session.Navigate(navCtx, target)
	cancel()
	if err != nil {
		return Content{}, err
	}

	if browser.DetectLoginWall(ctx, session) {
		return Content{}, ErrLoginRequired
	}

	browser.ExpandCollapsed(ctx, session)

	mainPage, err := readPage(ctx, session, target)
	if err != nil {
		return Content{}, err
	}
	content := Content{Tier: TierRendered, Pages: []Page{mainPage}}

	for _, link := range p.discoverSubpages(ctx, mainPage) {
		subCtx, cancel := context.WithTimeout(ctx, subpageTimeout)
		page, err := visitSubpage(subCtx, session, link.URL)
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "skipping subpage", "url", link.URL, "err", err)
			continue
		}
		content.Pages = append(content.Pages, page)
	}

	return content, nil
}

func (p *Pipeline) discoverSubpages(ctx context.Context, mainPage Page) []discovery.ScoredLink {
	doc, err := htmlutil.ParseDoc(mainPage.HTML)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse rendered html", "err", err)
		return nil
	}
	anchors := htmlutil.GetAnchors(ctx, doc.Find("a[href]"))
	ranked := discovery.RankPages(ctx, mainPage.URL, anchors)
	if len(ranked) > maxSubpages {
		ranked = ranked[:maxSubpages]
	}
	return ranked
}

func visitSubpage(ctx context.Context, session browser.Session, url string) (Page, error) {
	if err := session.Navigate(ctx, url); err != nil {
		return Page{}, err
	}
	browser.ExpandCollapsed(ctx, session)
	return readPage(ctx, session, url)
}

func readPage(ctx context.Context, session browser.Session, url string) (Page, error) {
	html, err := session.HTML(ctx)
	if err != nil {
		return Page{}, err
	}
	text, err := session.Text(ctx)
	if err != nil {
		return Page{}, err
	}
	return Page{URL: url, HTML: html, Text: text}, nil
}

// probeFetch opens a fresh session and interrogates the site through a
// chat widget if one exists, or the on-page search box otherwise.
func (p *Pipeline) probeFetch(ctx context.Context, target string) (Content, error) {
	session, err := p.launcher.NewSession(ctx)
	if err != nil {
		return Content{}, err
	}
	defer session.Close()

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	err = session.Navigate(navCtx, target)
	cancel()
	if err != nil {
		return Content{}, err
	}

	if browser.DetectLoginWall(ctx, session) {
		return Content{}, ErrLoginRequired
	}

	if findChatWidget(ctx, session) {
		slog.InfoContext(ctx, "probing chat widget", "url", target)
		responses := probeChat(ctx, session)
		if len(responses) > 0 {
			return Content{Tier: TierProbe, Responses: responses}, nil
		}
	}

	slog.InfoContext(ctx, "probing search box", "url", target)
	responses := probeSearch(ctx, session)
	return Content{Tier: TierProbe, Responses: responses}, nil
}
