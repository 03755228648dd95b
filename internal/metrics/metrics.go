// Package metrics provides metrics collection for the traversal engine.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and aggregates traversal metrics.
type Collector struct {
	// Counters
	requestsTotal   atomic.Int64
	errorsTotal     atomic.Int64
	pagesDiscovered atomic.Int64
	pagesAdmitted   atomic.Int64
	pagesFetched    atomic.Int64
	linksExtracted  atomic.Int64
	bytesTotal      atomic.Int64

	// Rate tracking
	requestsInWindow atomic.Int64
	errorsInWindow   atomic.Int64
	windowStart      atomic.Int64

	// Response time tracking
	responseTimesSum atomic.Int64
	responseTimesNum atomic.Int64

	// Gauges
	frontierDepth atomic.Int64
	inFlight      atomic.Int64

	// Histogram buckets for response times in ms
	responseTimeBuckets [10]atomic.Int64 // <10, <50, <100, <250, <500, <1000, <2500, <5000, <10000, >=10000

	// Error breakdown
	errorCounts map[string]*atomic.Int64
	errorMu     sync.RWMutex

	// Status code breakdown
	statusCodes map[int]*atomic.Int64
	statusMu    sync.RWMutex

	startTime time.Time
}

// New creates a new metrics collector.
func New() *Collector {
	now := time.Now()
	c := &Collector{
		errorCounts: make(map[string]*atomic.Int64),
		statusCodes: make(map[int]*atomic.Int64),
		startTime:   now,
	}
	c.windowStart.Store(now.UnixNano())
	return c
}

// RecordRequest records an outbound page request.
func (c *Collector) RecordRequest() {
	c.requestsTotal.Add(1)
	c.requestsInWindow.Add(1)
}

// RecordError records an error by type.
func (c *Collector) RecordError(errorType string) {
	c.errorsTotal.Add(1)
	c.errorsInWindow.Add(1)

	c.errorMu.Lock()
	if c.errorCounts[errorType] == nil {
		c.errorCounts[errorType] = &atomic.Int64{}
	}
	c.errorCounts[errorType].Add(1)
	c.errorMu.Unlock()
}

// RecordResponseTime records a page fetch duration.
func (c *Collector) RecordResponseTime(d time.Duration) {
	ms := d.Milliseconds()
	c.responseTimesSum.Add(ms)
	c.responseTimesNum.Add(1)
	c.responseTimeBuckets[c.getBucket(ms)].Add(1)
}

func (c *Collector) getBucket(ms int64) int {
	switch {
	case ms < 10:
		return 0
	case ms < 50:
		return 1
	case ms < 100:
		return 2
	case ms < 250:
		return 3
	case ms < 500:
		return 4
	case ms < 1000:
		return 5
	case ms < 2500:
		return 6
	case ms < 5000:
		return 7
	case ms < 10000:
		return 8
	default:
		return 9
	}
}

// RecordStatusCode records an HTTP status code.
func (c *Collector) RecordStatusCode(code int) {
	c.statusMu.Lock()
	if c.statusCodes[code] == nil {
		c.statusCodes[code] = &atomic.Int64{}
	}
	c.statusCodes[code].Add(1)
	c.statusMu.Unlock()
}

// RecordPageDiscovered increments pages seen in extracted links.
func (c *Collector) RecordPageDiscovered() {
	c.pagesDiscovered.Add(1)
}

// RecordPageAdmitted increments pages admitted to the frontier.
func (c *Collector) RecordPageAdmitted() {
	c.pagesAdmitted.Add(1)
}

// RecordPageFetched increments completed page fetches.
func (c *Collector) RecordPageFetched() {
	c.pagesFetched.Add(1)
}

// RecordLinksExtracted adds to the extracted link count.
func (c *Collector) RecordLinksExtracted(n int64) {
	c.linksExtracted.Add(n)
}

// RecordBytes records transferred bytes.
func (c *Collector) RecordBytes(n int64) {
	c.bytesTotal.Add(n)
}

// SetFrontierDepth sets the current frontier length.
func (c *Collector) SetFrontierDepth(depth int64) {
	c.frontierDepth.Store(depth)
}

// AddInFlight adjusts the in-flight fetch gauge.
func (c *Collector) AddInFlight(delta int64) {
	c.inFlight.Add(delta)
}

// GetRequestsPerSecond returns the current requests per second rate.
func (c *Collector) GetRequestsPerSecond() float64 {
	return c.getRatePerSecond(&c.requestsInWindow)
}

// GetErrorsPerSecond returns the current errors per second rate.
func (c *Collector) GetErrorsPerSecond() float64 {
	return c.getRatePerSecond(&c.errorsInWindow)
}

// getRatePerSecond calculates rate per second with window rotation.
func (c *Collector) getRatePerSecond(counter *atomic.Int64) float64 {
	windowDuration := 10 * time.Second
	now := time.Now().UnixNano()
	windowStart := c.windowStart.Load()

	elapsed := time.Duration(now - windowStart)
	if elapsed >= windowDuration {
		// Rotate window
		if c.windowStart.CompareAndSwap(windowStart, now) {
			c.requestsInWindow.Store(0)
			c.errorsInWindow.Store(0)
		}
		return 0
	}

	count := counter.Load()
	if elapsed <= 0 {
		return 0
	}

	return float64(count) / elapsed.Seconds()
}

// GetAverageResponseTime returns the average response time.
func (c *Collector) GetAverageResponseTime() time.Duration {
	sum := c.responseTimesSum.Load()
	num := c.responseTimesNum.Load()
	if num == 0 {
		return 0
	}
	return time.Duration(sum/num) * time.Millisecond
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() *Snapshot {
	s := &Snapshot{
		Timestamp:           time.Now(),
		Uptime:              time.Since(c.startTime),
		RequestsTotal:       c.requestsTotal.Load(),
		ErrorsTotal:         c.errorsTotal.Load(),
		PagesDiscovered:     c.pagesDiscovered.Load(),
		PagesAdmitted:       c.pagesAdmitted.Load(),
		PagesFetched:        c.pagesFetched.Load(),
		LinksExtracted:      c.linksExtracted.Load(),
		BytesTotal:          c.bytesTotal.Load(),
		FrontierDepth:       c.frontierDepth.Load(),
		InFlight:            c.inFlight.Load(),
		RequestsPerSecond:   c.GetRequestsPerSecond(),
		ErrorsPerSecond:     c.GetErrorsPerSecond(),
		AverageResponseTime: c.GetAverageResponseTime(),
		ErrorCounts:         make(map[string]int64),
		StatusCodes:         make(map[int]int64),
		ResponseTimeHist:    make([]int64, 10),
	}

	c.errorMu.RLock()
	for k, v := range c.errorCounts {
		s.ErrorCounts[k] = v.Load()
	}
	c.errorMu.RUnlock()

	c.statusMu.RLock()
	for k, v := range c.statusCodes {
		s.StatusCodes[k] = v.Load()
	}
	c.statusMu.RUnlock()

	for i := 0; i < 10; i++ {
		s.ResponseTimeHist[i] = c.responseTimeBuckets[i].Load()
	}

	return s
}

// Reset resets all metrics.
func (c *Collector) Reset() {
	c.requestsTotal.Store(0)
	c.errorsTotal.Store(0)
	c.pagesDiscovered.Store(0)
	c.pagesAdmitted.Store(0)
	c.pagesFetched.Store(0)
	c.linksExtracted.Store(0)
	c.bytesTotal.Store(0)
	c.requestsInWindow.Store(0)
	c.errorsInWindow.Store(0)
	c.responseTimesSum.Store(0)
	c.responseTimesNum.Store(0)
	c.frontierDepth.Store(0)
	c.inFlight.Store(0)

	for i := 0; i < 10; i++ {
		c.responseTimeBuckets[i].Store(0)
	}

	c.errorMu.Lock()
	c.errorCounts = make(map[string]*atomic.Int64)
	c.errorMu.Unlock()

	c.statusMu.Lock()
	c.statusCodes = make(map[int]*atomic.Int64)
	c.statusMu.Unlock()

	c.windowStart.Store(time.Now().UnixNano())
	c.startTime = time.Now()
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	Timestamp           time.Time        `json:"timestamp"`
	Uptime              time.Duration    `json:"uptime"`
	RequestsTotal       int64            `json:"requests_total"`
	ErrorsTotal         int64            `json:"errors_total"`
	PagesDiscovered     int64            `json:"pages_discovered"`
	PagesAdmitted       int64            `json:"pages_admitted"`
	PagesFetched        int64            `json:"pages_fetched"`
	LinksExtracted      int64            `json:"links_extracted"`
	BytesTotal          int64            `json:"bytes_total"`
	FrontierDepth       int64            `json:"frontier_depth"`
	InFlight            int64            `json:"in_flight"`
	RequestsPerSecond   float64          `json:"requests_per_second"`
	ErrorsPerSecond     float64          `json:"errors_per_second"`
	AverageResponseTime time.Duration    `json:"average_response_time"`
	ErrorCounts         map[string]int64 `json:"error_counts"`
	StatusCodes         map[int]int64    `json:"status_codes"`
	ResponseTimeHist    []int64          `json:"response_time_histogram"`
}

// ErrorRate returns the error rate (errors/requests).
func (s *Snapshot) ErrorRate() float64 {
	if s.RequestsTotal == 0 {
		return 0
	}
	return float64(s.ErrorsTotal) / float64(s.RequestsTotal)
}

// AdmissionRate returns the share of discovered pages that were admitted.
func (s *Snapshot) AdmissionRate() float64 {
	if s.PagesDiscovered == 0 {
		return 0
	}
	return float64(s.PagesAdmitted) / float64(s.PagesDiscovered)
}

// Summary returns a human-readable summary.
func (s *Snapshot) Summary() map[string]interface{} {
	return map[string]interface{}{
		"uptime":               s.Uptime.String(),
		"requests_total":       s.RequestsTotal,
		"errors_total":         s.ErrorsTotal,
		"error_rate":           s.ErrorRate(),
		"pages_fetched":        s.PagesFetched,
		"pages_discovered":     s.PagesDiscovered,
		"pages_admitted":       s.PagesAdmitted,
		"links_extracted":      s.LinksExtracted,
		"frontier_depth":       s.FrontierDepth,
		"in_flight":            s.InFlight,
		"requests_per_second":  s.RequestsPerSecond,
		"avg_response_time_ms": s.AverageResponseTime.Milliseconds(),
	}
}
