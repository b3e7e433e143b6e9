package acquire

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"propfirm-backend/lib/browser"
)

var chatWidgetSelectors = []string{
	`[class*="chat"]`,
	`[id*="chat"]`,
	`[class*="intercom"]`,
	`[id*="intercom"]`,
	`[class*="zendesk"]`,
	`[class*="helpdesk"]`,
	`[class*="support"]`,
	`iframe[src*="chat"]`,
	`iframe[src*="intercom"]`,
	`iframe[src*="zendesk"]`,
}

var chatInputSelectors = []string{
	`input[placeholder*="message"]`,
	`input[placeholder*="Message"]`,
	`textarea[placeholder*="message"]`,
	`.chat-input input`,
	`.message-input`,
	`[class*="chat"] input[type="text"]`,
}

var chatBubbleSelectors = []string{
	`.chat-message`,
	`.message`,
	`[class*="chat"] [class*="response"]`,
	`[class*="bot"] [class*="message"]`,
	`.bot-response`,
	`.ai-response`,
}

// The fixed question battery. At most maxChatQuestions are asked per
// site to avoid being blocked.
var chatQuestions = []string{
	"What account sizes do you offer?",
	"What are your challenge account options?",
	"How much do your evaluation accounts cost?",
	"What are your pricing plans?",
	"What is the profit target for evaluation?",
	"How much profit do I need to make in phase 1?",
	"What is the maximum drawdown allowed?",
	"What are your drawdown rules?",
	"Is the drawdown trailing or static?",
	"What is the daily loss limit?",
	"What is the profit split percentage?",
	"How much of the profits do I keep?",
	"What are your payout terms?",
	"How often can I request withdrawals?",
	"What are your fees?",
	"Is there a monthly fee?",
	"Are there any reset fees?",
}

const maxChatQuestions = 9

var searchInputSelectors = []string{
	`input[type="search"]`,
	`input[name*="search"]`,
	`input[id*="search"]`,
	`input[placeholder*="search"]`,
	`input[placeholder*="Search"]`,
	`.search-input`,
	`.search-field`,
	`#search`,
}

var searchTerms = []string{
	"account sizes",
	"challenge accounts",
	"pricing plans",
	"profit target",
	"drawdown rules",
	"maximum drawdown",
	"daily loss limit",
	"trading rules",
	"profit split",
	"evaluation fee",
}

const (
	chatResponseWait = 2 * time.Second
	searchResultWait = 2 * time.Second
	// only the head of each search-result page is kept
	searchExcerptLen = 1000
	// bubbles shorter than this are timestamps or typing indicators
	minBubbleLen = 15
)

// findChatWidget looks for an embedded chat widget and tries to open it
// when present but hidden.
func findChatWidget(ctx context.Context, s browser.Session) bool {
	for _, selector := range chatWidgetSelectors {
		visible, err := s.Visible(ctx, selector)
		if err != nil {
			continue
		}
		if visible {
			return true
		}
		// a collapsed widget may open on click
		if n, err := s.ClickAll(ctx, selector); err == nil && n > 0 {
			sleepCtx(ctx, chatResponseWait)
			return true
		}
	}
	return false
}

// probeChat submits the question battery one at a time, scraping new
// message bubbles after each. Responses are deduplicated by exact text.
func probeChat(ctx context.Context, s browser.Session) []string {
	var inputSelector string
	for _, selector := range chatInputSelectors {
		visible, err := s.Visible(ctx, selector)
		if err == nil && visible {
			inputSelector = selector
			break
		}
	}
	if inputSelector == "" {
		return nil
	}

	var responses []string
	seen := map[string]bool{}

	for i, question := range chatQuestions {
		if i >= maxChatQuestions {
			break
		}
		slog.DebugContext(ctx, "asking chat question", "n", i+1, "question", question)

		if err := s.Fill(ctx, inputSelector, question); err != nil {
			slog.DebugContext(ctx, "chat fill failed", "err", err)
			continue
		}
		if err := s.PressEnter(ctx, inputSelector); err != nil {
			continue
		}
		sleepCtx(ctx, chatResponseWait)

		for _, bubbleSelector := range chatBubbleSelectors {
			bubbles, err := s.TextAll(ctx, bubbleSelector)
			if err != nil {
				continue
			}
			// only the tail can contain the fresh answer
			if len(bubbles) > 5 {
				bubbles = bubbles[len(bubbles)-5:]
			}
			for _, bubble := range bubbles {
				bubble = strings.TrimSpace(bubble)
				if len(bubble) < minBubbleLen || seen[bubble] {
					continue
				}
				seen[bubble] = true
				responses = append(responses, bubble)
			}
		}
	}
	return responses
}

// probeSearch falls back to the on-page search box: each term is
// submitted and the head of the resulting page text captured.
func probeSearch(ctx context.Context, s browser.Session) []string {
	var inputSelector string
	for _, selector := range searchInputSelectors {
		visible, err := s.Visible(ctx, selector)
		if err == nil && visible {
			inputSelector = selector
			break
		}
	}
	if inputSelector == "" {
		slog.InfoContext(ctx, "no search box found")
		return nil
	}

	var responses []string
	for _, term := range searchTerms {
		if err := s.Fill(ctx, inputSelector, term); err != nil {
			continue
		}
		if err := s.PressEnter(ctx, inputSelector); err != nil {
			continue
		}
		sleepCtx(ctx, searchResultWait)

		text, err := s.Text(ctx)
		if err != nil || len(text) < 100 {
			continue
		}
		if len(text) > searchExcerptLen {
			text = text[:searchExcerptLen]
		}
		responses = append(responses, text)
	}
	return responses
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
