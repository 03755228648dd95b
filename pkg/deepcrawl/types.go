// Package deepcrawl provides a deep-crawl traversal engine: it walks a
// website's link graph from a seed URL under configurable strategy,
// depth, page, and concurrency ceilings and reports per-page results
// plus aggregate statistics.
package deepcrawl

import (
	"time"

	"github.com/crawlforge/deepcrawl/internal/state"
	"github.com/crawlforge/deepcrawl/internal/stats"
)

// Strategy selects the traversal order of the frontier.
type Strategy string

const (
	// StrategyBFS explores the link graph breadth-first: every page at
	// depth d is admitted before any page at depth d+1.
	StrategyBFS Strategy = "bfs"

	// StrategyDFS explores depth-first: the most recently discovered
	// link is fetched next.
	StrategyDFS Strategy = "dfs"

	// StrategyBestFirst pops the highest-scored pending URL next, using
	// the configured Scorer.
	StrategyBestFirst Strategy = "best-first"
)

// Valid reports whether the strategy is one of the supported values.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyBFS, StrategyDFS, StrategyBestFirst:
		return true
	}
	return false
}

// CrawlResult is the outcome of one attempted URL. Results are
// immutable once appended to a report; failed pages carry
// Success=false and an Error string but still count toward MaxPages.
type CrawlResult struct {
	URL       string         `json:"url"`
	Title     string         `json:"title,omitempty"`
	Content   string         `json:"content,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Depth     int            `json:"depth"`
	ParentURL string         `json:"parent_url,omitempty"`
	Links     []string       `json:"links,omitempty"`
	CrawlTime time.Duration  `json:"crawl_time"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Metadata keys populated by the engine.
const (
	MetaStatusCode    = "status_code"
	MetaContentLength = "content_length"
	MetaLinkCount     = "link_count"
	MetaPriorityScore = "priority_score"
)

// Report is the complete result of one crawl run.
type Report struct {
	Seed        string            `json:"seed"`
	Strategy    Strategy          `json:"strategy"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Duration    time.Duration     `json:"duration"`
	Results     []CrawlResult     `json:"results"`
	Stats       *stats.Statistics `json:"stats"`
}

// Pages returns the number of attempted pages.
func (r *Report) Pages() int {
	return len(r.Results)
}

// statsPages converts results into the aggregator's input shape.
func statsPages(results []CrawlResult) []stats.Page {
	pages := make([]stats.Page, 0, len(results))
	for _, res := range results {
		p := stats.Page{
			URL:       res.URL,
			Success:   res.Success,
			Depth:     res.Depth,
			ParentURL: res.ParentURL,
		}
		// Archived runs round-trip metadata through JSON, where numbers
		// come back as float64.
		switch n := res.Metadata[MetaContentLength].(type) {
		case int:
			p.ContentLength = n
		case float64:
			p.ContentLength = int(n)
		}
		if score, ok := res.Metadata[MetaPriorityScore].(float64); ok {
			p.Score = score
			p.HasScore = true
		}
		pages = append(pages, p)
	}
	return pages
}

// archivePages converts results into the archive's stored shape.
func archivePages(results []CrawlResult) []state.PageRecord {
	pages := make([]state.PageRecord, 0, len(results))
	for _, res := range results {
		pages = append(pages, state.PageRecord{
			URL:       res.URL,
			Title:     res.Title,
			Success:   res.Success,
			Error:     res.Error,
			Depth:     res.Depth,
			ParentURL: res.ParentURL,
			Links:     res.Links,
			CrawlTime: res.CrawlTime,
			Metadata:  res.Metadata,
		})
	}
	return pages
}

// RecordsToResults converts archived pages back into crawl results so
// archived runs can be re-aggregated.
func RecordsToResults(pages []state.PageRecord) []CrawlResult {
	results := make([]CrawlResult, 0, len(pages))
	for _, p := range pages {
		results = append(results, CrawlResult{
			URL:       p.URL,
			Title:     p.Title,
			Success:   p.Success,
			Error:     p.Error,
			Depth:     p.Depth,
			ParentURL: p.ParentURL,
			Links:     p.Links,
			CrawlTime: p.CrawlTime,
			Metadata:  p.Metadata,
		})
	}
	return results
}

// ComputeStats aggregates statistics for a result list, used both at
// the end of a run and when re-aggregating archived runs.
func ComputeStats(results []CrawlResult, strategy Strategy) *stats.Statistics {
	return stats.Compute(statsPages(results), string(strategy))
}
