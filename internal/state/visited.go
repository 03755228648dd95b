// Package state provides the visited-URL set and the result archive for
// the traversal engine.
package state

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// VisitedSet tracks normalized URLs that have been admitted. Entries are
// write-once: a URL marked visited stays visited for the life of the
// crawl. A Bloom filter fronts an exact map so the common miss path
// stays cheap while lookups remain exact.
type VisitedSet struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// NewVisitedSet creates a visited set sized for the estimated URL count.
func NewVisitedSet(estimatedURLs int) *VisitedSet {
	if estimatedURLs < 1000 {
		estimatedURLs = 1000
	}
	return &VisitedSet{
		filter: bloom.NewWithEstimates(uint(estimatedURLs), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// MarkVisited records a URL. It returns false if the URL was already
// present, so callers can use it as an atomic test-and-set.
func (v *VisitedSet) MarkVisited(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.exact[url]; exists {
		return false
	}
	v.filter.AddString(url)
	v.exact[url] = struct{}{}
	return true
}

// Contains reports whether a URL has been visited.
func (v *VisitedSet) Contains(url string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.filter.TestString(url) {
		return false
	}
	_, exists := v.exact[url]
	return exists
}

// Count returns the number of visited URLs.
func (v *VisitedSet) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.exact)
}

// All returns every visited URL, in no particular order.
func (v *VisitedSet) All() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	urls := make([]string, 0, len(v.exact))
	for url := range v.exact {
		urls = append(urls, url)
	}
	return urls
}
