// Package stats computes post-crawl statistics and insights. Everything
// here is a pure function of the completed result list; nothing feeds
// back into traversal.
package stats

import (
	"fmt"
	"sort"
)

// Page is the slice of a crawl result the aggregator needs.
type Page struct {
	URL           string
	Success       bool
	Depth         int
	ParentURL     string
	ContentLength int
	// Score is the admission priority for best-first runs; HasScore
	// distinguishes a genuine 0.0 from "not a best-first run".
	Score    float64
	HasScore bool
}

// Statistics is the aggregate view of one completed crawl.
type Statistics struct {
	TotalPages        int              `json:"total_pages"`
	SuccessfulPages   int              `json:"successful_pages"`
	FailedPages       int              `json:"failed_pages"`
	SuccessRate       float64          `json:"success_rate"`
	DepthDistribution map[int]int      `json:"depth_distribution"`
	MaxDepthReached   int              `json:"max_depth_reached"`
	AverageDepth      float64          `json:"average_depth"`
	PriorityInsights  *PriorityInsight `json:"priority_insights,omitempty"`
	AdaptiveInsights  *AdaptiveInsight `json:"adaptive_insights,omitempty"`
	CrawlPaths        [][]string       `json:"crawl_paths,omitempty"`
}

// ScoreBucket summarizes the pages admitted within one score range.
type ScoreBucket struct {
	Label            string  `json:"label"`
	Pages            int     `json:"pages"`
	AvgContentLength float64 `json:"avg_content_length"`
}

// PriorityInsight relates admission scores to the content the scored
// pages eventually yielded.
type PriorityInsight struct {
	Buckets    []ScoreBucket `json:"buckets"`
	BestBucket string        `json:"best_bucket"`
}

// AdaptiveInsight compares the scorer's top-ranked half against the
// whole run on a content-length proxy. Lift > 1 means the scorer beat
// a uniform baseline.
type AdaptiveInsight struct {
	TopHalfMeanContent float64 `json:"top_half_mean_content"`
	OverallMeanContent float64 `json:"overall_mean_content"`
	Lift               float64 `json:"lift"`
	Outperformed       bool    `json:"outperformed"`
}

// Compute aggregates statistics from a completed crawl. The strategy
// name selects which insight sections apply: best-first runs get
// priority and adaptive insights, depth-first runs get path traces.
func Compute(pages []Page, strategy string) *Statistics {
	s := &Statistics{
		TotalPages:        len(pages),
		DepthDistribution: make(map[int]int),
	}

	var depthSum int
	for _, p := range pages {
		if !p.Success {
			s.FailedPages++
			continue
		}
		s.SuccessfulPages++
		s.DepthDistribution[p.Depth]++
		depthSum += p.Depth
		if p.Depth > s.MaxDepthReached {
			s.MaxDepthReached = p.Depth
		}
	}

	if s.TotalPages > 0 {
		s.SuccessRate = float64(s.SuccessfulPages) / float64(s.TotalPages)
	}
	if s.SuccessfulPages > 0 {
		s.AverageDepth = float64(depthSum) / float64(s.SuccessfulPages)
	}

	switch strategy {
	case "best-first", "best":
		s.PriorityInsights = priorityInsights(pages)
		s.AdaptiveInsights = adaptiveInsights(pages)
	case "dfs", "depth-first":
		s.CrawlPaths = crawlPaths(pages)
	}

	return s
}

var bucketBounds = []struct {
	label string
	lo    float64
	hi    float64
}{
	{"0.00-0.25", 0.00, 0.25},
	{"0.25-0.50", 0.25, 0.50},
	{"0.50-0.75", 0.50, 0.75},
	{"0.75-1.00", 0.75, 1.01},
}

func priorityInsights(pages []Page) *PriorityInsight {
	sums := make([]int, len(bucketBounds))
	counts := make([]int, len(bucketBounds))

	for _, p := range pages {
		if !p.HasScore || !p.Success {
			continue
		}
		for i, b := range bucketBounds {
			if p.Score >= b.lo && p.Score < b.hi {
				sums[i] += p.ContentLength
				counts[i]++
				break
			}
		}
	}

	insight := &PriorityInsight{Buckets: make([]ScoreBucket, 0, len(bucketBounds))}
	var bestAvg float64
	for i, b := range bucketBounds {
		bucket := ScoreBucket{Label: b.label, Pages: counts[i]}
		if counts[i] > 0 {
			bucket.AvgContentLength = float64(sums[i]) / float64(counts[i])
		}
		if bucket.AvgContentLength > bestAvg {
			bestAvg = bucket.AvgContentLength
			insight.BestBucket = b.label
		}
		insight.Buckets = append(insight.Buckets, bucket)
	}
	return insight
}

func adaptiveInsights(pages []Page) *AdaptiveInsight {
	scored := make([]Page, 0, len(pages))
	for _, p := range pages {
		if p.HasScore && p.Success {
			scored = append(scored, p)
		}
	}
	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	var overall int
	for _, p := range scored {
		overall += p.ContentLength
	}
	overallMean := float64(overall) / float64(len(scored))

	topN := (len(scored) + 1) / 2
	var top int
	for _, p := range scored[:topN] {
		top += p.ContentLength
	}
	topMean := float64(top) / float64(topN)

	insight := &AdaptiveInsight{
		TopHalfMeanContent: topMean,
		OverallMeanContent: overallMean,
	}
	if overallMean > 0 {
		insight.Lift = topMean / overallMean
	}
	insight.Outperformed = insight.Lift > 1
	return insight
}

// crawlPaths reconstructs seed-to-leaf URL sequences from parent
// back-pointers. A leaf is a successful page that no other page in the
// run names as its parent.
func crawlPaths(pages []Page) [][]string {
	byURL := make(map[string]Page, len(pages))
	hasChild := make(map[string]bool)
	for _, p := range pages {
		if !p.Success {
			continue
		}
		byURL[p.URL] = p
		if p.ParentURL != "" {
			hasChild[p.ParentURL] = true
		}
	}

	paths := make([][]string, 0)
	for _, p := range pages {
		if !p.Success || hasChild[p.URL] {
			continue
		}

		path := []string{}
		cur := p
		for {
			path = append([]string{cur.URL}, path...)
			if cur.ParentURL == "" {
				break
			}
			parent, ok := byURL[cur.ParentURL]
			if !ok {
				break
			}
			cur = parent
		}
		paths = append(paths, path)
	}

	sort.SliceStable(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) > len(paths[j])
		}
		return fmt.Sprint(paths[i]) < fmt.Sprint(paths[j])
	})
	return paths
}

// DeepestPaths returns the n longest root-to-leaf paths of a
// depth-first run. It returns nil for other strategies.
func (s *Statistics) DeepestPaths(n int) [][]string {
	if n <= 0 || len(s.CrawlPaths) == 0 {
		return nil
	}
	if n > len(s.CrawlPaths) {
		n = len(s.CrawlPaths)
	}
	return s.CrawlPaths[:n]
}
