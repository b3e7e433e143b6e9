package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"propfirm-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	staticTimeout = 10 * time.Second
	// bodies shorter than this are redirect shells or error pages
	minUsableBytes = 1000
)

// Markers indicating the page body is only rendered by script, in which
// case the static body is useless and the rendered tier must run.
var scriptRequiredMarkers = []string{
	"javascript is required",
	"please enable javascript",
	"noscript",
	"loading...",
	"redirecting...",
}

// NewStaticClient builds the resty client used by the static tier:
// realistic browser UA, cloudflare bypass transport, short timeout.
func NewStaticClient() *resty.Client {
	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(staticTimeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "propscrape.lib.acquire.static")
	return client
}

// staticFetch attempts the cheapest tier: a plain GET. It returns the
// body only when it is long enough to be real content and carries no
// script-required markers.
func (p *Pipeline) staticFetch(ctx context.Context, target string) (string, error) {
	res, err := p.static.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return "", err
	}
	if res.StatusCode() >= 400 {
		return "", fmt.Errorf("status %d", res.StatusCode())
	}

	body := res.String()
	if len(body) < minUsableBytes {
		return "", fmt.Errorf("response too short (%d chars)", len(body))
	}

	bodyLower := strings.ToLower(body)
	for _, marker := range scriptRequiredMarkers {
		if strings.Contains(bodyLower, marker) {
			slog.InfoContext(ctx, "static body indicates script required", "marker", marker)
			return "", fmt.Errorf("script required marker: %q", marker)
		}
	}

	slog.InfoContext(ctx, "static fetch succeeded", "url", target, "bytes", len(body))
	return body, nil
}
