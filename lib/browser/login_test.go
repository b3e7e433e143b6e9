package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSession scripts a page for detector tests.
type fakeSession struct {
	location string
	title    string
	text     string
	visible  map[string]bool
	clicked  []string
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error { return nil }
func (f *fakeSession) Location(ctx context.Context) (string, error)   { return f.location, nil }
func (f *fakeSession) Title(ctx context.Context) (string, error)      { return f.title, nil }
func (f *fakeSession) HTML(ctx context.Context) (string, error)       { return "", nil }
func (f *fakeSession) Text(ctx context.Context) (string, error)       { return f.text, nil }
func (f *fakeSession) Visible(ctx context.Context, selector string) (bool, error) {
	return f.visible[selector], nil
}
func (f *fakeSession) ClickAll(ctx context.Context, selector string) (int, error) {
	f.clicked = append(f.clicked, selector)
	return 0, nil
}
func (f *fakeSession) Fill(ctx context.Context, selector, value string) error { return nil }
func (f *fakeSession) PressEnter(ctx context.Context, selector string) error  { return nil }
func (f *fakeSession) TextAll(ctx context.Context, selector string) ([]string, error) {
	return nil, nil
}
func (f *fakeSession) Close() error { return nil }

func TestDetectLoginWallByTitle(t *testing.T) {
	s := &fakeSession{
		location: "https://firm.example.com/members",
		title:    "Sign In",
	}
	require.True(t, DetectLoginWall(context.Background(), s))
}

func TestDetectLoginWallTitleMustBePrimary(t *testing.T) {
	s := &fakeSession{
		location: "https://firm.example.com/",
		title:    "How to sign in to the dashboard - FAQ",
	}
	require.False(t, DetectLoginWall(context.Background(), s))
}

func TestDetectLoginWallBySelector(t *testing.T) {
	s := &fakeSession{
		location: "https://firm.example.com/portal",
		title:    "Member Portal",
		visible:  map[string]bool{`input[type="password"]`: true},
	}
	require.True(t, DetectLoginWall(context.Background(), s))
}

func TestDetectLoginWallByPath(t *testing.T) {
	s := &fakeSession{
		location: "https://firm.example.com/auth/login?next=%2Frules",
		title:    "Welcome",
	}
	require.True(t, DetectLoginWall(context.Background(), s))
}

func TestDetectLoginWallByAccessDeniedPhrase(t *testing.T) {
	s := &fakeSession{
		location: "https://firm.example.com/rules",
		title:    "Rules",
		text:     "You must be logged in to view this page.",
	}
	require.True(t, DetectLoginWall(context.Background(), s))
}

func TestHelpDomainsAreExempt(t *testing.T) {
	s := &fakeSession{
		location: "https://help.tradeify.co/articles/drawdown",
		title:    "Sign In",
		visible:  map[string]bool{`input[type="password"]`: true},
		text:     "please log in",
	}
	require.False(t, DetectLoginWall(context.Background(), s))
}

func TestExpandCollapsedClicksEverySelectorGroup(t *testing.T) {
	s := &fakeSession{}
	ExpandCollapsed(context.Background(), s)
	require.Equal(t, len(collapsedSelectors), len(s.clicked))
}
