package browser

import (
	"context"
	"log/slog"
	"time"
)

// Rule text frequently hides behind collapsed sections, so these are
// clicked open before any content is read.
var collapsedSelectors = []string{
	`[data-toggle="collapse"]`,
	`.accordion-button`,
	`.collapsible-header`,
	`.expand-button`,
	`.toggle-button`,
	`[aria-expanded="false"]`,
	`details summary`,
}

const clickSettle = 500 * time.Millisecond

// ExpandCollapsed clicks every visible accordion/collapse trigger, with
// a short settle delay per selector group so animations can finish.
// Individual click failures are ignored.
func ExpandCollapsed(ctx context.Context, s Session) int {
	expanded := 0
	for _, selector := range collapsedSelectors {
		n, err := s.ClickAll(ctx, selector)
		if err != nil {
			continue
		}
		if n > 0 {
			expanded += n
			select {
			case <-time.After(clickSettle):
			case <-ctx.Done():
				return expanded
			}
		}
	}
	if expanded > 0 {
		slog.InfoContext(ctx, "expanded collapsed elements", "count", expanded)
	}
	return expanded
}
