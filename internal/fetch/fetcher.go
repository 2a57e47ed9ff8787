// Package fetch retrieves recipe pages. A shared global rate limiter plus a
// per-domain limiter keeps the service a polite crawler regardless of how
// many requests target one publisher.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/longevityfoodlab/recipe-parser/internal/observability"
)

// ErrTooManyRedirects indicates too many HTTP redirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// ErrHTTPStatusNotOK indicates an HTTP response with a non-200 status code.
var ErrHTTPStatusNotOK = errors.New("HTTP status not OK")

const (
	defaultFetchTimeoutSeconds = 10
	maxRedirects               = 5
	maxBodySizeMB              = 5
	maxBodySizeBytes           = maxBodySizeMB * 1024 * 1024
	globalLimiterBurst         = 5
	domainLimiterRate          = 1
	domainLimiterBurst         = 2
)

// browserUserAgent mimics a desktop browser; many recipe publishers serve
// reduced markup or a block page to obvious bot agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves HTML documents over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type WebFetcher struct {
	client         *http.Client
	globalLimiter  *rate.Limiter
	domainLimiters map[string]*rate.Limiter
	mu             sync.RWMutex
	userAgent      string
}

func NewWebFetcher(rps float64, timeout time.Duration) *WebFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeoutSeconds * time.Second
	}

	return &WebFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}

				return nil
			},
		},
		globalLimiter:  rate.NewLimiter(rate.Limit(rps), globalLimiterBurst),
		domainLimiters: make(map[string]*rate.Limiter),
		userAgent:      browserUserAgent,
	}
}

func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.globalLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("global rate limiter wait: %w", err)
	}

	domain := f.extractDomain(rawURL)

	domainLimiter := f.getDomainLimiter(domain)
	if err := domainLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("domain rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		observability.PageFetches.WithLabelValues("transport_error").Inc()

		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.PageFetches.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		return nil, fmt.Errorf("%w: %d", ErrHTTPStatusNotOK, resp.StatusCode)
	}

	observability.PageFetches.WithLabelValues("ok").Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

func (f *WebFetcher) getDomainLimiter(domain string) *rate.Limiter {
	f.mu.RLock()
	limiter, exists := f.domainLimiters[domain]
	f.mu.RUnlock()

	if exists {
		return limiter
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double check
	if limiter, exists := f.domainLimiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(domainLimiterRate, domainLimiterBurst)
	f.domainLimiters[domain] = limiter

	return limiter
}

func (f *WebFetcher) extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Host)
}

const (
	// fullDocumentMinBytes is the size below which a caller-supplied snippet
	// is assumed to be truncated and worth re-fetching.
	fullDocumentMinBytes = 20000
)

// NeedsFullFetch reports whether a caller-supplied HTML snippet is too thin
// to extract from and the page should be fetched fresh. Full documents carry
// an html element and script tags; pre-rendered fragments usually lack both.
func NeedsFullFetch(snippet string) bool {
	if len(snippet) < fullDocumentMinBytes {
		return true
	}

	lower := strings.ToLower(snippet)

	return !strings.Contains(lower, "<html") || !strings.Contains(lower, "<script")
}
