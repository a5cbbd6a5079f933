package search

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/caselens/caselens/internal/retry"
)

// DefaultBaseURL is the DuckDuckGo HTML (no-JS) endpoint.
const DefaultBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo implements Provider by scraping the HTML results page. One
// request per query, no pagination.
type DuckDuckGo struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	// Limiter paces queries so scraping stays polite. Optional.
	Limiter *rate.Limiter
	// Retry applies to the results-page fetch. Zero value uses defaults.
	Retry retry.Policy
	// Timeout bounds each fetch attempt. Zero means 30s.
	Timeout time.Duration
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	base := d.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := base + "?q=" + url.QueryEscape(query)

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	body, err := retry.Do(ctx, d.Retry, func(ctx context.Context) ([]byte, error) {
		return retry.WithTimeout(ctx, timeout, func(ctx context.Context) ([]byte, error) {
			return d.fetchPage(ctx, endpoint)
		})
	})
	if err != nil {
		// Per-query failures degrade to an empty result set; the run goes on
		// with whatever the other queries found.
		log.Warn().Err(err).Str("query", query).Msg("search failed")
		return nil, nil
	}
	return parseResults(body, limit, d.Name()), nil
}

func (d *DuckDuckGo) fetchPage(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	ua := d.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "ja,en")

	hc := d.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &retry.StatusError{Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func parseResults(body []byte, limit int, source string) []Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	out := make([]Result, 0, limit)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := unwrapRedirect(href)
		if !isHTTPURL(target) {
			return true
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Source:  source,
		})
		return len(out) < limit
	})
	return out
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg=<encoded> indirection to the
// destination URL. Non-redirect hrefs pass through unchanged.
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "duckduckgo.com/l/") && !strings.HasPrefix(href, "/l/") {
		return href
	}
	raw := href
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
