package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"coingecko-exporter/internal/logger"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher downloads a page and turns it into a snapshot. It sees the
// server-rendered HTML only; tables that are filled in by client-side
// scripts have to be saved from the browser and loaded from disk instead.
type Fetcher struct {
	timeout   time.Duration
	userAgent string
	cookie    string
	delay     time.Duration
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithUserAgent overrides the browser user agent sent with each request
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithCookie sends a session cookie, needed for the signed-in portfolio page
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithDelay sets the politeness delay between requests to the same domain
func WithDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// NewFetcher creates a fetcher with the given request timeout
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:   timeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch visits pageURL and parses the response body.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid page url %q", pageURL)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.MaxDepth(1),
		colly.Async(false),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.timeout)
	if f.delay > 0 {
		if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: f.delay}); err != nil {
			return nil, fmt.Errorf("failed to set fetch limit: %w", err)
		}
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", f.userAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
		if f.cookie != "" {
			r.Headers.Set("Cookie", f.cookie)
		}
	})

	var body []byte
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		logger.ErrorWithErr(ctx, "Page fetch error", err, "url", r.Request.URL.String(), "status", r.StatusCode)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, fetchErr)
	}
	if body == nil {
		return nil, fmt.Errorf("empty response from %s", pageURL)
	}

	logger.Info(ctx, "Page fetched", "url", pageURL, "bytes", len(body))
	return NewPage(pageURL, bytes.NewReader(body))
}
