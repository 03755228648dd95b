// Package fetch defines the page-fetch collaborator boundary. The
// traversal engine calls a Fetcher once per admitted URL and interprets
// the result; how the page is actually retrieved (plain HTTP, headless
// browser) is an implementation detail behind this interface.
package fetch

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks the collaborator itself as unreachable, as
// opposed to a single page failing. The scheduler treats it as a
// crawl-level fault.
var ErrUnavailable = errors.New("fetch collaborator unavailable")

// Options are the per-request knobs the engine passes through.
type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	RespectRobots   bool
}

// PageResult is the shape of a completed fetch. A non-nil error from
// Fetch or a status code >= 400 both become a failed page result.
type PageResult struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	HTML        string
	Title       string
	Duration    time.Duration
}

// Fetcher retrieves one page. Implementations must be safe for
// concurrent use; one Fetcher is shared by all crawl workers.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*PageResult, error)
}
