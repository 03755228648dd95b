package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	crawlerrors "github.com/crawlforge/deepcrawl/internal/errors"
	"github.com/crawlforge/deepcrawl/internal/parser"
)

// HTTPClientConfig holds configuration for the HTTP fetcher.
type HTTPClientConfig struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	UserAgent           string
	Headers             map[string]string
	SkipTLSVerify       bool
	MaxBodyBytes        int64
}

// DefaultHTTPClientConfig returns tuned defaults.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             15 * time.Second,
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 50,
		MaxConnsPerHost:     50,
		UserAgent:           "deepcrawl/1.0 (+https://github.com/crawlforge/deepcrawl)",
		MaxBodyBytes:        5 * 1024 * 1024,
	}
}

// HTTPClient is the default fetch collaborator: a tuned net/http client
// that retrieves a page and extracts its title.
type HTTPClient struct {
	client       *http.Client
	noRedirects  *http.Client
	userAgent    string
	headers      map[string]string
	maxBodyBytes int64
	mu           sync.RWMutex
}

// NewHTTPClient creates a new HTTP fetcher.
func NewHTTPClient(config HTTPClientConfig) *HTTPClient {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 5 * 1024 * 1024
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.SkipTLSVerify,
		},
	}

	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		noRedirects: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent:    config.UserAgent,
		headers:      config.Headers,
		maxBodyBytes: config.MaxBodyBytes,
	}
}

// SetHeaders sets custom headers for all requests.
func (c *HTTPClient) SetHeaders(headers map[string]string) {
	c.mu.Lock()
	c.headers = headers
	c.mu.Unlock()
}

// Fetch implements the Fetcher interface.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string, opts Options) (*PageResult, error) {
	start := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, crawlerrors.New(crawlerrors.Parse, targetURL, "failed to build request", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	c.mu.RLock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	c.mu.RUnlock()

	client := c.client
	if !opts.FollowRedirects {
		client = c.noRedirects
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, crawlerrors.Categorize(err, targetURL)
	}
	defer resp.Body.Close()

	result := &PageResult{
		URL:         targetURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if strings.Contains(result.ContentType, "text/html") ||
		strings.Contains(result.ContentType, "text/plain") ||
		result.ContentType == "" {
		body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
		if err != nil {
			return nil, crawlerrors.Categorize(err, targetURL)
		}
		result.HTML = string(body)
		result.Title = parser.ExtractTitle(result.HTML)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() {
	if t, ok := c.client.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}
