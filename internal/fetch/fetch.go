package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/cache"
	"github.com/caselens/caselens/internal/retry"
	"github.com/caselens/caselens/internal/robots"
)

// Content is the textual payload extracted from one fetched page. Body is
// bounded to [MinBodyRunes, MaxBodyRunes]; pages below the minimum are
// rejected, pages above the cap are truncated.
type Content struct {
	URL           string
	Host          string
	Title         string
	Body          string
	PublishedDate string // YYYY-MM-DD, empty when unknown
	UpdatedDate   string // YYYY-MM-DD, empty when unknown
	Language      string
	Region        string
}

// Quality gates for the extracted body text, counted in runes.
const (
	MinBodyRunes = 400
	MaxBodyRunes = 6000
)

// Fetcher retrieves pages and extracts their content. Failures never escape
// Fetch; a page that cannot be used simply yields nil.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	// Retry applies to the HTTP GET. Zero value uses defaults
	// (3 attempts, 1s initial delay).
	Retry retry.Policy
	// Timeout bounds each GET attempt. Zero means 30s.
	Timeout time.Duration
	// MinRunes/MaxRunes override the body gates when positive.
	MinRunes int
	MaxRunes int
	// Cache, when set, serves repeated fetches of the same URL from disk.
	Cache *cache.PageCache
	// Robots, when set, gates every fetch on the host's robots.txt.
	Robots *robots.Gate
}

func (f *Fetcher) minRunes() int {
	if f.MinRunes > 0 {
		return f.MinRunes
	}
	return MinBodyRunes
}

func (f *Fetcher) maxRunes() int {
	if f.MaxRunes > 0 {
		return f.MaxRunes
	}
	return MaxBodyRunes
}

// Fetch retrieves rawURL and extracts title, dates, language, region, and
// body text. It returns nil when the page is unusable (fetch failure, not
// HTML, body too short); the reason is logged, never propagated.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *Content {
	if f.Robots != nil && !f.Robots.Allowed(ctx, rawURL) {
		log.Debug().Str("url", rawURL).Msg("disallowed by robots.txt")
		return nil
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	page, cached := f.fromCache(rawURL)
	if !cached {
		var err error
		page, err = retry.Do(ctx, f.Retry, func(ctx context.Context) (fetchedPage, error) {
			return retry.WithTimeout(ctx, timeout, func(ctx context.Context) (fetchedPage, error) {
				return f.get(ctx, rawURL)
			})
		})
		if err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("fetch failed")
			return nil
		}
		if f.Cache != nil {
			if err := f.Cache.Save(rawURL, page.contentType, page.body); err != nil {
				log.Debug().Err(err).Str("url", rawURL).Msg("cache save failed")
			}
		}
	}
	if !isHTMLContentType(page.contentType) {
		log.Debug().Str("url", rawURL).Str("contentType", page.contentType).Msg("skipping non-HTML content")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.body))
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("parse failed")
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	title := extractTitle(doc)
	published := extractPublishedDate(doc)
	updated := extractUpdatedDate(doc)
	lang, region := detectLangRegion(doc, u.Hostname())

	body := extractMainContent(doc, f.minRunes())
	if n := len([]rune(body)); n < f.minRunes() {
		log.Debug().Str("url", rawURL).Int("runes", n).Msg("content too short")
		return nil
	}
	body = truncateRunes(body, f.maxRunes())

	return &Content{
		URL:           rawURL,
		Host:          u.Hostname(),
		Title:         title,
		Body:          body,
		PublishedDate: published,
		UpdatedDate:   updated,
		Language:      lang,
		Region:        region,
	}
}

type fetchedPage struct {
	body        []byte
	contentType string
}

func (f *Fetcher) fromCache(rawURL string) (fetchedPage, bool) {
	if f.Cache == nil {
		return fetchedPage{}, false
	}
	entry, body, err := f.Cache.Load(rawURL)
	if err != nil {
		return fetchedPage{}, false
	}
	log.Debug().Str("url", rawURL).Msg("cache hit")
	return fetchedPage{body: body, contentType: entry.ContentType}, true
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fetchedPage{}, err
	}
	ua := f.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ja,en;q=0.9")

	hc := f.HTTPClient
	if hc == nil {
		hc = &http.Client{CheckRedirect: maxRedirects(5)}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fetchedPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fetchedPage{}, &retry.StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetchedPage{}, err
	}
	return fetchedPage{body: body, contentType: resp.Header.Get("Content-Type")}, nil
}

func maxRedirects(max int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return fmt.Errorf("stopped after %d redirects", max)
		}
		return nil
	}
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
