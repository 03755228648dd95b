package deepcrawl

import (
	"time"

	"github.com/crawlforge/deepcrawl/internal/fetch"
	"github.com/crawlforge/deepcrawl/internal/logger"
	"github.com/crawlforge/deepcrawl/internal/metrics"
	"github.com/crawlforge/deepcrawl/internal/score"
)

// Option is a functional option for configuring the Crawler.
type Option func(*Crawler) error

// WithConfig sets the entire configuration.
func WithConfig(config *Config) Option {
	return func(c *Crawler) error {
		c.config = config
		return nil
	}
}

// WithStrategy sets the traversal strategy.
func WithStrategy(s Strategy) Option {
	return func(c *Crawler) error {
		c.config.Strategy = s
		return nil
	}
}

// WithMaxDepth sets the maximum link distance from the seed.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) error {
		if depth < 0 {
			depth = 0
		}
		c.config.MaxDepth = depth
		return nil
	}
}

// WithMaxPages sets the per-run page budget.
func WithMaxPages(n int) Option {
	return func(c *Crawler) error {
		if n < 1 {
			n = 1
		}
		c.config.MaxPages = n
		return nil
	}
}

// WithMaxConcurrent sets the number of simultaneous fetches.
func WithMaxConcurrent(n int) Option {
	return func(c *Crawler) error {
		if n < 1 {
			n = 1
		}
		c.config.MaxConcurrent = n
		return nil
	}
}

// WithRequestDelay sets the minimum spacing between requests on the
// same worker slot.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Crawler) error {
		if d < 0 {
			d = 0
		}
		c.config.RequestDelay = d
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Crawler) error {
		c.config.Timeout = timeout
		return nil
	}
}

// WithIncludePatterns adds URL substrings to include.
func WithIncludePatterns(patterns ...string) Option {
	return func(c *Crawler) error {
		c.config.IncludePatterns = append(c.config.IncludePatterns, patterns...)
		return nil
	}
}

// WithExcludePatterns adds URL substrings to exclude.
func WithExcludePatterns(patterns ...string) Option {
	return func(c *Crawler) error {
		c.config.ExcludePatterns = append(c.config.ExcludePatterns, patterns...)
		return nil
	}
}

// WithAllowedDomains sets the allowed domains.
func WithAllowedDomains(domains ...string) Option {
	return func(c *Crawler) error {
		c.config.AllowedDomains = append(c.config.AllowedDomains, domains...)
		return nil
	}
}

// WithScorer injects a priority scorer for best-first runs.
func WithScorer(s score.Scorer) Option {
	return func(c *Crawler) error {
		c.scorer = s
		return nil
	}
}

// WithFetcher injects a custom fetch collaborator.
func WithFetcher(f fetch.Fetcher) Option {
	return func(c *Crawler) error {
		c.fetcher = f
		return nil
	}
}

// WithBrowser enables the headless-browser collaborator.
func WithBrowser(enabled bool) Option {
	return func(c *Crawler) error {
		c.config.Fetch.UseBrowser = enabled
		return nil
	}
}

// WithUserAgent sets the user agent string.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) error {
		c.config.Fetch.UserAgent = ua
		return nil
	}
}

// WithArchive sets the archive file path for persisting finished runs.
func WithArchive(path string) Option {
	return func(c *Crawler) error {
		c.config.ArchivePath = path
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Crawler) error {
		c.logger = l
		return nil
	}
}

// WithMetrics sets a custom metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Crawler) error {
		c.metrics = m
		return nil
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(c *Crawler) error {
		c.config.Verbose = verbose
		return nil
	}
}

// WithDebug enables debug mode.
func WithDebug(debug bool) Option {
	return func(c *Crawler) error {
		c.config.Debug = debug
		return nil
	}
}
