package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"propfirm-backend/lib/browser"

	"github.com/stretchr/testify/require"
)

// fakeSession serves scripted pages keyed by URL.
type fakeSession struct {
	current     string
	pages       map[string]fakePage
	visible     map[string]bool
	navigations []string
	closed      bool
}

type fakePage struct {
	title string
	html  string
	text  string
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.navigations = append(f.navigations, url)
	f.current = url
	return nil
}
func (f *fakeSession) Location(ctx context.Context) (string, error) { return f.current, nil }
func (f *fakeSession) Title(ctx context.Context) (string, error) {
	return f.pages[f.current].title, nil
}
func (f *fakeSession) HTML(ctx context.Context) (string, error) { return f.pages[f.current].html, nil }
func (f *fakeSession) Text(ctx context.Context) (string, error) { return f.pages[f.current].text, nil }
func (f *fakeSession) Visible(ctx context.Context, selector string) (bool, error) {
	return f.visible[selector], nil
}
func (f *fakeSession) ClickAll(ctx context.Context, selector string) (int, error) { return 0, nil }
func (f *fakeSession) Fill(ctx context.Context, selector, value string) error     { return nil }
func (f *fakeSession) PressEnter(ctx context.Context, selector string) error      { return nil }
func (f *fakeSession) TextAll(ctx context.Context, selector string) ([]string, error) {
	return nil, nil
}
func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

type fakeLauncher struct {
	session *fakeSession
}

func (l fakeLauncher) NewSession(ctx context.Context) (browser.Session, error) {
	return l.session, nil
}

func TestNextTransitions(t *testing.T) {
	cases := []struct {
		tier     Tier
		outcome  Outcome
		wantTier Tier
		wantDone bool
	}{
		{TierStatic, OutcomeUsable, TierStatic, true},
		{TierStatic, OutcomeEmpty, TierRendered, false},
		{TierStatic, OutcomeLoginWall, TierStatic, true},
		{TierRendered, OutcomeEmpty, TierProbe, false},
		{TierRendered, OutcomeUsable, TierRendered, true},
		{TierProbe, OutcomeEmpty, TierManual, true},
		{TierProbe, OutcomeLoginWall, TierProbe, true},
	}
	for _, c := range cases {
		next, done := Next(c.tier, c.outcome)
		require.Equal(t, c.wantDone, done, "%s/%v", c.tier.String(), c.outcome)
		if !done {
			require.Equal(t, c.wantTier, next, "%s/%v", c.tier.String(), c.outcome)
		}
	}
}

func staticBody() string {
	return "<html><body>" +
		strings.Repeat("<p>Our evaluation accounts come with a profit target and a max drawdown limit.</p>\n", 20) +
		"</body></html>"
}

func TestAcquireStopsAtStaticTier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(staticBody()))
	}))
	defer server.Close()

	session := &fakeSession{}
	p := NewPipeline(NewStaticClient(), fakeLauncher{session: session})

	content, err := p.Acquire(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, TierStatic, content.Tier)
	require.Len(t, content.Pages, 1)
	require.Contains(t, content.Pages[0].Text, "profit target")
	require.Empty(t, session.navigations, "static success must not open a browser")
}

func TestAcquireFallsThroughToRendered(t *testing.T) {
	// too short for the static tier
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	mainHTML := `<html><body>
		<a href="/pricing">Pricing Plans</a>
		<a href="https://twitter.com/firm">Twitter</a>
		<a href="/about">About Us</a>
	</body></html>`
	session := &fakeSession{
		pages: map[string]fakePage{
			server.URL: {title: "Funded Firm", html: mainHTML, text: "challenge overview"},
			server.URL + "/pricing": {
				title: "Pricing",
				html:  "<html><body>plans</body></html>",
				text:  "Account Size: $50,000. Profit Target 8%.",
			},
		},
	}
	p := NewPipeline(NewStaticClient(), fakeLauncher{session: session})

	content, err := p.Acquire(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, TierRendered, content.Tier)
	require.Len(t, content.Pages, 2)
	require.Equal(t, server.URL, content.Pages[0].URL)
	require.Equal(t, server.URL+"/pricing", content.Pages[1].URL)
	require.Contains(t, content.CombinedText(), "$50,000")
	require.True(t, session.closed)
	require.NotContains(t, session.navigations, server.URL+"/about")
}

func TestAcquireStopsOnLoginWall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	session := &fakeSession{
		pages: map[string]fakePage{
			server.URL: {title: "Member Portal"},
		},
		visible: map[string]bool{`input[type="password"]`: true},
	}
	p := NewPipeline(NewStaticClient(), fakeLauncher{session: session})

	_, err := p.Acquire(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrLoginRequired)
	require.True(t, session.closed)
}

func TestAcquireExhaustsAllTiers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	session := &fakeSession{
		pages: map[string]fakePage{
			server.URL: {title: "Coming Soon", html: "<html></html>", text: ""},
		},
	}
	// nothing the fake serves counts as usable rule data
	p := NewPipeline(NewStaticClient(), fakeLauncher{session: session},
		WithUsableCheck(func(c Content) bool {
			return strings.Contains(c.CombinedText(), "drawdown")
		}))

	content, err := p.Acquire(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, TierManual, content.Tier)
}
