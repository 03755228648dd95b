package deepcrawl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	crawlerrors "github.com/crawlforge/deepcrawl/internal/errors"
	"github.com/crawlforge/deepcrawl/internal/fetch"
	"github.com/crawlforge/deepcrawl/internal/frontier"
	"github.com/crawlforge/deepcrawl/internal/logger"
	"github.com/crawlforge/deepcrawl/internal/metrics"
	"github.com/crawlforge/deepcrawl/internal/parser"
	"github.com/crawlforge/deepcrawl/internal/ratelimit"
	"github.com/crawlforge/deepcrawl/internal/scope"
	"github.com/crawlforge/deepcrawl/internal/score"
	"github.com/crawlforge/deepcrawl/internal/state"
)

// State is the lifecycle state of a Crawler.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Crawler is the traversal engine orchestrator. A Crawler runs one
// crawl at a time; Run returns the complete Report for that run.
type Crawler struct {
	config  *Config
	scorer  score.Scorer
	fetcher fetch.Fetcher
	logger  *logger.Logger
	metrics *metrics.Collector

	checker *scope.Checker
	pacer   *ratelimit.Pacer

	state   atomic.Int32
	running atomic.Bool

	// mu is the single critical section covering frontier, visited set
	// and the admitted-page budget, so that checking and marking are
	// one atomic step.
	mu       sync.Mutex
	front    frontier.Frontier
	visited  *state.VisitedSet
	admitted int

	// ownsFetcher marks a fetcher the crawler built itself and must close.
	ownsFetcher bool
}

// New creates a new crawler with the given options.
func New(opts ...Option) (*Crawler, error) {
	c := &Crawler{
		config: DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.logger == nil {
		logLevel := logger.WarnLevel
		if c.config.Debug {
			logLevel = logger.DebugLevel
		} else if c.config.Verbose {
			logLevel = logger.InfoLevel
		}
		c.logger = logger.New(logger.Config{
			Level:     logLevel,
			Pretty:    true,
			Component: "crawler",
		})
	}

	if c.metrics == nil {
		c.metrics = metrics.New()
	}

	return c, nil
}

// State returns the crawler's lifecycle state.
func (c *Crawler) State() State {
	return State(c.state.Load())
}

// Metrics returns the crawler's metrics collector.
func (c *Crawler) Metrics() *metrics.Collector {
	return c.metrics
}

// initialize builds the per-run collaborators.
func (c *Crawler) initialize() error {
	c.checker = scope.NewChecker(scope.Rules{
		IncludePatterns: c.config.IncludePatterns,
		ExcludePatterns: c.config.ExcludePatterns,
		AllowedDomains:  c.config.AllowedDomains,
		MaxDepth:        c.config.MaxDepth,
	})

	if c.fetcher == nil {
		if c.config.Fetch.UseBrowser {
			browserCfg := fetch.DefaultBrowserConfig()
			browserCfg.Timeout = c.config.Timeout
			if c.config.Fetch.UserAgent != "" {
				browserCfg.UserAgent = c.config.Fetch.UserAgent
			}
			bf, err := fetch.NewBrowserFetcher(browserCfg)
			if err != nil {
				return err
			}
			c.fetcher = bf
		} else {
			httpCfg := fetch.DefaultHTTPClientConfig()
			httpCfg.Timeout = c.config.Timeout
			if c.config.Fetch.UserAgent != "" {
				httpCfg.UserAgent = c.config.Fetch.UserAgent
			}
			c.fetcher = fetch.NewHTTPClient(httpCfg)
		}
		c.ownsFetcher = true
	}

	if c.scorer == nil && c.config.Strategy == StrategyBestFirst {
		c.scorer = score.DepthDecayScorer{}
	}

	c.front = frontier.New(string(c.config.Strategy))
	c.visited = state.NewVisitedSet(c.config.MaxPages)
	c.pacer = ratelimit.NewPacer(c.config.MaxConcurrent, c.config.RequestDelay)
	c.admitted = 0

	return nil
}

// cleanup releases collaborators the crawler created itself.
func (c *Crawler) cleanup() {
	if !c.ownsFetcher {
		return
	}
	switch f := c.fetcher.(type) {
	case *fetch.HTTPClient:
		f.Close()
	case *fetch.BrowserFetcher:
		f.Close()
	}
	c.fetcher = nil
	c.ownsFetcher = false
}

// outcome is one completed fetch handed back to the dispatch loop.
type outcome struct {
	slot   int
	entry  *frontier.Entry
	result CrawlResult
	links  []parser.Link
	fault  error
}

// Run executes one crawl from the seed URL. It blocks until the crawl
// terminates and returns the report.
//
// Cancelling ctx stops dispatch; in-flight pages finish and the partial
// report is returned with a nil error. A scheduler fault (the fetch
// collaborator wholly unavailable) also stops dispatch but returns the
// partial report together with the fault.
func (c *Crawler) Run(ctx context.Context, seedURL string) (*Report, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("crawler is already running")
	}
	defer c.running.Store(false)

	seed, err := scope.Normalize(seedURL, seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	if !c.config.Strategy.Valid() {
		return nil, fmt.Errorf("unknown strategy %q", c.config.Strategy)
	}

	if err := c.initialize(); err != nil {
		return nil, err
	}
	defer c.cleanup()

	if !c.checker.Admissible(seed, 0) {
		return nil, fmt.Errorf("seed URL %s rejected by scope rules", seed)
	}

	c.state.Store(int32(StateRunning))
	startedAt := time.Now()

	c.logger.CrawlEvent(logger.InfoLevel, seed, 0).
		Str("strategy", string(c.config.Strategy)).
		Int("max_pages", c.config.MaxPages).
		Int("max_concurrent", c.config.MaxConcurrent).
		Msg("crawl started")

	// Admit the seed.
	c.mu.Lock()
	c.visited.MarkVisited(seed)
	c.admitted = 1
	c.front.Push(&frontier.Entry{URL: seed, Depth: 0, Score: c.scoreCandidate(seed, score.Context{Depth: 0})})
	c.mu.Unlock()
	c.metrics.RecordPageAdmitted()

	results, faultErr := c.dispatchLoop(ctx)

	completedAt := time.Now()
	final := StateCompleted
	if faultErr != nil || ctx.Err() != nil {
		final = StateAborted
	}
	c.state.Store(int32(final))

	report := &Report{
		Seed:        seed,
		Strategy:    c.config.Strategy,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
		Results:     results,
		Stats:       ComputeStats(results, c.config.Strategy),
	}

	c.logger.Event(logger.InfoLevel).
		Str("state", final.String()).
		Int("pages", len(results)).
		Dur("duration", report.Duration).
		Msg("crawl finished")

	if c.config.ArchivePath != "" {
		if err := c.archiveRun(report); err != nil {
			c.logger.WithError(err).Warn("failed to archive crawl run")
		}
	}

	return report, faultErr
}

// dispatchLoop runs the scheduler until the frontier drains, the budget
// is exhausted, the context is cancelled, or a fault occurs.
func (c *Crawler) dispatchLoop(ctx context.Context) ([]CrawlResult, error) {
	maxConcurrent := c.config.MaxConcurrent
	results := make([]CrawlResult, 0, c.config.MaxPages)
	completions := make(chan outcome)

	slots := make(chan int, maxConcurrent)
	for i := 0; i < maxConcurrent; i++ {
		slots <- i
	}

	inflight := 0
	var faultErr error

	for {
		stopped := ctx.Err() != nil || faultErr != nil

		if !stopped {
			for inflight < maxConcurrent {
				c.mu.Lock()
				entry, ok := c.front.Pop()
				pending := int64(c.front.Len())
				c.mu.Unlock()
				c.metrics.SetFrontierDepth(pending)
				if !ok {
					break
				}
				slot := <-slots
				inflight++
				go c.fetchOne(ctx, entry, slot, completions)
			}
		}

		if inflight == 0 {
			break
		}

		out := <-completions
		slots <- out.slot
		inflight--

		results = append(results, out.result)
		c.metrics.RecordPageFetched()

		if out.fault != nil {
			if faultErr == nil {
				faultErr = out.fault
				c.logger.WithError(out.fault).Error("fetch collaborator unavailable, aborting crawl")
			}
			continue
		}

		if out.result.Success && ctx.Err() == nil && faultErr == nil {
			c.admitChildren(out.entry, out.result.URL, out.links)
		}
	}

	return results, faultErr
}

// fetchOne retrieves a single admitted URL on one worker slot.
func (c *Crawler) fetchOne(ctx context.Context, entry *frontier.Entry, slot int, done chan<- outcome) {
	c.metrics.AddInFlight(1)
	defer c.metrics.AddInFlight(-1)

	out := outcome{slot: slot, entry: entry}

	if err := c.pacer.Wait(ctx, slot); err != nil {
		out.result = c.failedResult(entry, crawlerrors.Categorize(err, entry.URL))
		done <- out
		return
	}

	c.logger.CrawlEvent(logger.DebugLevel, entry.URL, entry.Depth).
		Int("slot", slot).
		Msg("dispatching fetch")

	c.metrics.RecordRequest()
	page, err := c.fetcher.Fetch(ctx, entry.URL, fetch.Options{
		Timeout:         c.config.Timeout,
		FollowRedirects: c.config.Fetch.FollowRedirects,
		RespectRobots:   c.config.Fetch.RespectRobots,
	})

	if err != nil {
		if errors.Is(err, fetch.ErrUnavailable) {
			out.fault = err
			out.result = c.failedResult(entry, crawlerrors.New(crawlerrors.Unavailable, entry.URL, "fetch collaborator unavailable", err))
			done <- out
			return
		}
		perr := crawlerrors.Categorize(err, entry.URL)
		c.metrics.RecordError(perr.Type.String())
		out.result = c.failedResult(entry, perr)
		done <- out
		return
	}

	c.metrics.RecordStatusCode(page.StatusCode)
	c.metrics.RecordResponseTime(page.Duration)
	c.metrics.RecordBytes(int64(len(page.HTML)))
	c.logger.FetchEvent(entry.URL, page.StatusCode, page.Duration)

	if perr := crawlerrors.FromStatusCode(entry.URL, page.StatusCode); perr != nil {
		c.metrics.RecordError(perr.Type.String())
		res := c.failedResult(entry, perr)
		res.Metadata[MetaStatusCode] = page.StatusCode
		out.result = res
		done <- out
		return
	}

	base := page.FinalURL
	if base == "" {
		base = entry.URL
	}
	links, lerr := parser.ExtractLinks(page.HTML, base)
	if lerr != nil {
		c.logger.WithURL(entry.URL).WithError(lerr).Debug("link extraction failed")
		links = nil
	}
	c.metrics.RecordLinksExtracted(int64(len(links)))

	linkURLs := make([]string, 0, len(links))
	for _, l := range links {
		linkURLs = append(linkURLs, l.URL)
	}

	res := CrawlResult{
		URL:       entry.URL,
		Title:     page.Title,
		Content:   page.HTML,
		Success:   true,
		Depth:     entry.Depth,
		ParentURL: entry.ParentURL,
		Links:     linkURLs,
		CrawlTime: page.Duration,
		Metadata: map[string]any{
			MetaStatusCode:    page.StatusCode,
			MetaContentLength: len(page.HTML),
			MetaLinkCount:     len(links),
		},
	}
	if c.config.Strategy == StrategyBestFirst {
		res.Metadata[MetaPriorityScore] = entry.Score
	}

	out.result = res
	out.links = links
	done <- out
}

// failedResult builds the failed-page form of a crawl result. Failed
// pages are data: they count toward the budget and expand no links.
func (c *Crawler) failedResult(entry *frontier.Entry, perr *crawlerrors.PageError) CrawlResult {
	res := CrawlResult{
		URL:       entry.URL,
		Success:   false,
		Error:     perr.Error(),
		Depth:     entry.Depth,
		ParentURL: entry.ParentURL,
		Metadata:  map[string]any{},
	}
	if c.config.Strategy == StrategyBestFirst {
		res.Metadata[MetaPriorityScore] = entry.Score
	}
	return res
}

// admitChildren runs discovered links through scope checks and admits
// the survivors. Visited-marking and the budget check happen under the
// scheduler mutex in the same step as the frontier push.
func (c *Crawler) admitChildren(parent *frontier.Entry, parentURL string, links []parser.Link) {
	childDepth := parent.Depth + 1

	// Depth-first pushes in reverse so the first discovered link ends up
	// on top of the stack and is explored first.
	if c.config.Strategy == StrategyDFS {
		reversed := make([]parser.Link, len(links))
		for i, l := range links {
			reversed[len(links)-1-i] = l
		}
		links = reversed
	}

	for _, l := range links {
		c.metrics.RecordPageDiscovered()

		if !c.checker.Admissible(l.URL, childDepth) {
			continue
		}

		sc := c.scoreCandidate(l.URL, score.Context{
			Depth:      childDepth,
			AnchorText: l.Text,
		})

		c.mu.Lock()
		if c.admitted >= c.config.MaxPages {
			c.mu.Unlock()
			return
		}
		if !c.visited.MarkVisited(l.URL) {
			c.mu.Unlock()
			continue
		}
		c.admitted++
		c.front.Push(&frontier.Entry{
			URL:       l.URL,
			Depth:     childDepth,
			ParentURL: parentURL,
			Score:     sc,
		})
		c.mu.Unlock()

		c.metrics.RecordPageAdmitted()
		c.logger.CrawlEvent(logger.DebugLevel, l.URL, childDepth).
			Float64("score", sc).
			Msg("page admitted")
	}
}

// scoreCandidate computes the admission priority for best-first runs.
// Other strategies ignore scores, so it returns 0 for them.
func (c *Crawler) scoreCandidate(url string, sc score.Context) float64 {
	if c.config.Strategy != StrategyBestFirst || c.scorer == nil {
		return 0
	}
	return score.Clamp(c.scorer.Score(url, sc))
}

// archiveRun persists a finished report to the configured archive.
func (c *Crawler) archiveRun(report *Report) error {
	archive, err := state.OpenArchive(c.config.ArchivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	return archive.SaveRun(&state.RunRecord{
		Seed:        report.Seed,
		Strategy:    string(report.Strategy),
		StartedAt:   report.StartedAt,
		CompletedAt: report.CompletedAt,
		Pages:       archivePages(report.Results),
	})
}
