// Package scope provides URL normalization and admissibility filtering
// for the traversal engine.
package scope

import (
	"net/url"
	"strings"
)

// Rules defines the policy side of admissibility. Include and exclude
// patterns are plain substrings matched against the full URL; exclude
// takes precedence. AllowedDomains, when non-empty, requires the host
// to contain at least one listed domain.
type Rules struct {
	IncludePatterns []string
	ExcludePatterns []string
	AllowedDomains  []string
	MaxDepth        int
}

// Checker evaluates URLs against scope rules. It carries no mutable
// state: visited-set and page-budget checks live in the scheduler's
// critical section so that admission stays atomic.
type Checker struct {
	rules Rules
}

// NewChecker creates a checker for the given rules.
func NewChecker(rules Rules) *Checker {
	return &Checker{rules: rules}
}

// Admissible reports whether a URL at the given depth passes the policy
// checks, evaluated in order: depth ceiling, allowed domains, include
// patterns, exclude patterns. Any failing check short-circuits with
// rejection and no side effects.
func (c *Checker) Admissible(urlStr string, depth int) bool {
	if depth > c.rules.MaxDepth {
		return false
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	if len(c.rules.AllowedDomains) > 0 {
		host := strings.ToLower(parsed.Host)
		matched := false
		for _, domain := range c.rules.AllowedDomains {
			if strings.Contains(host, strings.ToLower(domain)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(c.rules.IncludePatterns) > 0 {
		matched := false
		for _, pattern := range c.rules.IncludePatterns {
			if strings.Contains(urlStr, pattern) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range c.rules.ExcludePatterns {
		if strings.Contains(urlStr, pattern) {
			return false
		}
	}

	return true
}

// Normalize canonicalizes a URL for deduplication: relative references
// are resolved against base, the fragment is stripped, a single trailing
// slash is removed (except for the root path) and the host is lowercased.
// Normalize is idempotent.
func Normalize(rawURL, baseURL string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}

	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return "", err
		}
		ref = base.ResolveReference(ref)
	}

	ref.Fragment = ""
	ref.Host = strings.ToLower(ref.Host)

	if ref.Path != "/" && strings.HasSuffix(ref.Path, "/") {
		ref.Path = strings.TrimSuffix(ref.Path, "/")
	}

	return ref.String(), nil
}

// IsValidURL reports whether a URL is worth fetching at all: absolute,
// http or https, and not pointing at a known binary or asset type.
func IsValidURL(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if parsed.Host == "" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	return true
}

var skipExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".ico", ".svg", ".webp",
	".css", ".js", ".woff", ".woff2", ".ttf", ".eot",
	".pdf", ".zip", ".tar", ".gz", ".rar",
	".mp3", ".mp4", ".wav", ".avi", ".mov",
	".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
}

// Host extracts the lowercased host component of a URL.
func Host(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
