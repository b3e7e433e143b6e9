// Package browser wraps headless Chrome sessions behind a small
// interface the acquisition pipeline can drive (and tests can fake).
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("propscrape.lib.browser")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Session is one isolated page context. Sessions are scoped resources:
// every exit path must call Close before control returns to the
// pipeline, or OS-level browser processes leak.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Text(ctx context.Context) (string, error)
	Visible(ctx context.Context, selector string) (bool, error)
	ClickAll(ctx context.Context, selector string) (int, error)
	Fill(ctx context.Context, selector, value string) error
	PressEnter(ctx context.Context, selector string) error
	TextAll(ctx context.Context, selector string) ([]string, error)
	Close() error
}

// Launcher opens sessions. The pipeline takes one as a constructed
// dependency so tests can substitute a fake.
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}

// ChromeLauncher launches isolated headless Chrome sessions.
type ChromeLauncher struct {
	Headless bool
	// settle time after navigation, stands in for a network-idle signal
	Settle time.Duration
}

func NewChromeLauncher() ChromeLauncher {
	return ChromeLauncher{Headless: true, Settle: 2 * time.Second}
}

func (l ChromeLauncher) NewSession(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// force browser startup now so failures surface here, not mid-tier
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &chromeSession{
		ctx:         tabCtx,
		settle:      l.Settle,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

type chromeSession struct {
	ctx         context.Context
	settle      time.Duration
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// run executes actions in the tab, bounded by the caller's context.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "Navigate")
	defer span.End()

	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.settle),
	)
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, chromedp.Location(&out))
	return out, err
}

func (s *chromeSession) Title(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, chromedp.Title(&out))
	return out, err
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, chromedp.OuterHTML("html", &out, chromedp.ByQuery))
	return out, err
}

func (s *chromeSession) Text(ctx context.Context) (string, error) {
	var out string
	err := s.run(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &out))
	return out, err
}

func (s *chromeSession) Visible(ctx context.Context, selector string) (bool, error) {
	var out bool
	script := fmt.Sprintf(
		`(() => { const e = document.querySelector(%q); return !!(e && e.offsetParent !== null); })()`,
		selector,
	)
	err := s.run(ctx, chromedp.Evaluate(script, &out))
	return out, err
}

func (s *chromeSession) ClickAll(ctx context.Context, selector string) (int, error) {
	var out int
	script := fmt.Sprintf(`(() => {
		let n = 0;
		for (const e of document.querySelectorAll(%q)) {
			if (e.offsetParent === null) continue;
			try { e.click(); n++; } catch (_) {}
		}
		return n;
	})()`, selector)
	err := s.run(ctx, chromedp.Evaluate(script, &out))
	return out, err
}

func (s *chromeSession) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx,
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (s *chromeSession) PressEnter(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.SendKeys(selector, kb.Enter, chromedp.ByQuery))
}

func (s *chromeSession) TextAll(ctx context.Context, selector string) ([]string, error) {
	out := []string{}
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.innerText || "")`,
		selector,
	)
	err := s.run(ctx, chromedp.Evaluate(script, &out))
	return out, err
}

func (s *chromeSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return nil
}
