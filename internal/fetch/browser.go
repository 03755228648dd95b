package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	crawlerrors "github.com/crawlforge/deepcrawl/internal/errors"
)

// BrowserConfig defines headless-browser fetcher configuration.
type BrowserConfig struct {
	Headless          bool          `json:"headless" yaml:"headless"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent         string        `json:"user_agent" yaml:"user_agent"`
	ViewportWidth     int           `json:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    int           `json:"viewport_height" yaml:"viewport_height"`
	IgnoreHTTPSErrors bool          `json:"ignore_https_errors" yaml:"ignore_https_errors"`
}

// DefaultBrowserConfig returns default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:          true,
		Timeout:           20 * time.Second,
		UserAgent:         "deepcrawl/1.0 (+https://github.com/crawlforge/deepcrawl)",
		ViewportWidth:     1280,
		ViewportHeight:    720,
		IgnoreHTTPSErrors: true,
	}
}

// BrowserFetcher is a JS-rendering collaborator backed by headless
// Chrome via Rod. Use it when target pages build their link graph
// client-side; the plain HTTPClient is much cheaper otherwise.
type BrowserFetcher struct {
	browser *rod.Browser
	config  BrowserConfig
}

// NewBrowserFetcher launches a browser and connects to it.
func NewBrowserFetcher(config BrowserConfig) (*BrowserFetcher, error) {
	l := launcher.New().Headless(config.Headless)
	if config.IgnoreHTTPSErrors {
		l = l.Set("ignore-certificate-errors", "true")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to launch browser: %v", ErrUnavailable, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: failed to connect to browser: %v", ErrUnavailable, err)
	}

	return &BrowserFetcher{browser: browser, config: config}, nil
}

// Fetch implements the Fetcher interface by rendering the page and
// exporting the final DOM.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string, opts Options) (*PageResult, error) {
	start := time.Now()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = b.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create page: %v", ErrUnavailable, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  b.config.ViewportWidth,
		Height: b.config.ViewportHeight,
	})
	if b.config.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{UserAgent: b.config.UserAgent}.Call(page)
	}

	// Capture the status code of the document response.
	var statusCode int
	var contentType string
	wait := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			statusCode = e.Response.Status
			contentType = e.Response.MIMEType
			return true
		}
		return false
	})

	if err := page.Navigate(url); err != nil {
		return nil, crawlerrors.Categorize(err, url)
	}
	wait()

	if err := page.WaitLoad(); err != nil {
		return nil, crawlerrors.Categorize(err, url)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, crawlerrors.Categorize(err, url)
	}

	info, err := page.Info()
	if err != nil {
		return nil, crawlerrors.Categorize(err, url)
	}

	if statusCode == 0 {
		statusCode = 200
	}

	return &PageResult{
		URL:         url,
		FinalURL:    info.URL,
		StatusCode:  statusCode,
		ContentType: contentType,
		HTML:        html,
		Title:       info.Title,
		Duration:    time.Since(start),
	}, nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() error {
	return b.browser.Close()
}
