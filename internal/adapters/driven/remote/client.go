package remote

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
	"github.com/HMaxF/jesoes.com/internal/core/ports/driven"
	"github.com/HMaxF/jesoes.com/internal/logger"
)

const (
	// cacheBustParam carries a unique timestamp so CDN and proxy caches
	// never answer with an old catalog or body.
	cacheBustParam = "caller_time"

	defaultUserAgent = "jesoes-cli"
	defaultTimeout   = 30 * time.Second

	// maxBodyBytes bounds a single response after decompression.
	maxBodyBytes = 256 << 20
)

// Ensure Client implements the source ports at compile time.
var _ driven.Source = (*Client)(nil)

// Config configures a Client.
type Config struct {
	// CatalogURL is the published catalog location. Relative download
	// URLs in the catalog resolve against it.
	CatalogURL string

	// Timeout applies to each request.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RateLimit spaces requests to the publisher.
	RateLimit RateLimitConfig
}

// Client downloads the catalog and document bodies over HTTP.
type Client struct {
	catalogURL *url.URL
	http       *http.Client
	userAgent  string
	limiter    *RateLimiter
	now        func() time.Time
}

// NewClient builds a Client for the given configuration.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.CatalogURL))
	if err != nil {
		return nil, fmt.Errorf("parse catalog url %q: %w", cfg.CatalogURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: catalog url %q must be absolute", domain.ErrInvalidInput, cfg.CatalogURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		catalogURL: base,
		http:       &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		limiter:    NewRateLimiter(cfg.RateLimit),
		now:        time.Now,
	}, nil
}

// FetchCatalog downloads and decodes the catalog.
func (c *Client) FetchCatalog(ctx context.Context) (*domain.Catalog, error) {
	body, err := c.get(ctx, c.catalogURL)
	if err != nil {
		return nil, err
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", domain.ErrNetwork, err)
	}
	return &catalog, nil
}

// FetchDocument downloads the body published for entry.
func (c *Client) FetchDocument(ctx context.Context, entry domain.CatalogEntry) ([]byte, error) {
	rel, err := url.Parse(strings.TrimSpace(entry.DownloadURL))
	if err != nil || entry.DownloadURL == "" {
		return nil, fmt.Errorf("%w: bad download_url %q for %s", domain.ErrInvalidEntry, entry.DownloadURL, entry.Code)
	}
	return c.get(ctx, c.catalogURL.ResolveReference(rel))
}

// get performs a cache-busting GET and returns the decompressed body.
func (c *Client) get(ctx context.Context, target *url.URL) ([]byte, error) {
	reqURL := c.bust(target)

	if !c.limiter.Allow() {
		logger.Debug("throttled, waiting to GET %s", target.Path)
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: wait for rate limiter: %v", domain.ErrNetwork, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", c.userAgent)

	logger.Debug("GET %s", reqURL.Redacted())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", domain.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrNetwork, domain.ErrRateLimited, target.Path)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrNetwork, target.Path, resp.StatusCode)
	}

	// Setting Accept-Encoding ourselves disables the transport's
	// transparent decompression, so handle gzip here.
	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: open gzip body: %v", domain.ErrNetwork, err)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrNetwork, err)
	}
	return body, nil
}

// bust returns target with a unique caller_time parameter.
func (c *Client) bust(target *url.URL) *url.URL {
	u := *target
	q := u.Query()
	q.Set(cacheBustParam, c.now().UTC().Format(time.RFC3339Nano))
	u.RawQuery = q.Encode()
	return &u
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
