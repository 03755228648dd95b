package stats

import (
	"math"
	"testing"
)

// =============================================================================
// Core Aggregate Tests
// =============================================================================

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, "bfs")
	if s.TotalPages != 0 {
		t.Errorf("TotalPages = %v, want 0", s.TotalPages)
	}
	if s.SuccessRate != 0 {
		t.Errorf("SuccessRate = %v, want 0", s.SuccessRate)
	}
	if s.MaxDepthReached != 0 {
		t.Errorf("MaxDepthReached = %v, want 0", s.MaxDepthReached)
	}
}

func TestCompute_Basics(t *testing.T) {
	pages := []Page{
		{URL: "https://x.com", Success: true, Depth: 0, ContentLength: 100},
		{URL: "https://x.com/a", Success: true, Depth: 1, ParentURL: "https://x.com", ContentLength: 200},
		{URL: "https://x.com/b", Success: true, Depth: 1, ParentURL: "https://x.com", ContentLength: 300},
		{URL: "https://x.com/c", Success: false, Depth: 2, ParentURL: "https://x.com/a"},
	}

	s := Compute(pages, "bfs")

	if s.TotalPages != 4 || s.SuccessfulPages != 3 || s.FailedPages != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/3/1", s.TotalPages, s.SuccessfulPages, s.FailedPages)
	}
	if s.SuccessRate != 0.75 {
		t.Errorf("SuccessRate = %v, want 0.75", s.SuccessRate)
	}
	if s.DepthDistribution[0] != 1 || s.DepthDistribution[1] != 2 {
		t.Errorf("DepthDistribution = %v", s.DepthDistribution)
	}
	if _, ok := s.DepthDistribution[2]; ok {
		t.Error("failed pages should not count in the depth distribution")
	}
	if s.MaxDepthReached != 1 {
		t.Errorf("MaxDepthReached = %v, want 1", s.MaxDepthReached)
	}
	if math.Abs(s.AverageDepth-2.0/3.0) > 1e-9 {
		t.Errorf("AverageDepth = %v, want 2/3", s.AverageDepth)
	}
	if s.PriorityInsights != nil || s.CrawlPaths != nil {
		t.Error("bfs run should have neither priority insights nor crawl paths")
	}
}

// =============================================================================
// Priority Insight Tests
// =============================================================================

func TestCompute_PriorityInsights(t *testing.T) {
	pages := []Page{
		{URL: "https://x.com/hi", Success: true, Score: 0.9, HasScore: true, ContentLength: 5000},
		{URL: "https://x.com/hi2", Success: true, Score: 0.8, HasScore: true, ContentLength: 3000},
		{URL: "https://x.com/lo", Success: true, Score: 0.1, HasScore: true, ContentLength: 100},
		{URL: "https://x.com/failed", Success: false, Score: 0.95, HasScore: true},
	}

	s := Compute(pages, "best-first")
	if s.PriorityInsights == nil {
		t.Fatal("best-first run should produce priority insights")
	}

	var top, bottom ScoreBucket
	for _, b := range s.PriorityInsights.Buckets {
		switch b.Label {
		case "0.75-1.00":
			top = b
		case "0.00-0.25":
			bottom = b
		}
	}
	if top.Pages != 2 {
		t.Errorf("top bucket pages = %v, want 2 (failed page excluded)", top.Pages)
	}
	if top.AvgContentLength != 4000 {
		t.Errorf("top bucket avg = %v, want 4000", top.AvgContentLength)
	}
	if bottom.Pages != 1 {
		t.Errorf("bottom bucket pages = %v, want 1", bottom.Pages)
	}
	if s.PriorityInsights.BestBucket != "0.75-1.00" {
		t.Errorf("BestBucket = %v, want 0.75-1.00", s.PriorityInsights.BestBucket)
	}
}

func TestCompute_AdaptiveInsights(t *testing.T) {
	pages := []Page{
		{URL: "https://x.com/a", Success: true, Score: 0.9, HasScore: true, ContentLength: 1000},
		{URL: "https://x.com/b", Success: true, Score: 0.7, HasScore: true, ContentLength: 800},
		{URL: "https://x.com/c", Success: true, Score: 0.2, HasScore: true, ContentLength: 100},
		{URL: "https://x.com/d", Success: true, Score: 0.1, HasScore: true, ContentLength: 100},
	}

	s := Compute(pages, "best-first")
	ai := s.AdaptiveInsights
	if ai == nil {
		t.Fatal("best-first run should produce adaptive insights")
	}
	if ai.TopHalfMeanContent != 900 {
		t.Errorf("TopHalfMeanContent = %v, want 900", ai.TopHalfMeanContent)
	}
	if ai.OverallMeanContent != 500 {
		t.Errorf("OverallMeanContent = %v, want 500", ai.OverallMeanContent)
	}
	if !ai.Outperformed {
		t.Error("scorer favoring rich pages should outperform the baseline")
	}
	if math.Abs(ai.Lift-1.8) > 1e-9 {
		t.Errorf("Lift = %v, want 1.8", ai.Lift)
	}
}

func TestCompute_AdaptiveInsightsNoScores(t *testing.T) {
	pages := []Page{{URL: "https://x.com", Success: true}}
	s := Compute(pages, "best-first")
	if s.AdaptiveInsights != nil {
		t.Error("runs with no scored pages should have nil adaptive insights")
	}
}

// =============================================================================
// Crawl Path Tests
// =============================================================================

func TestCompute_CrawlPaths(t *testing.T) {
	// seed -> a -> c, seed -> b
	pages := []Page{
		{URL: "https://x.com", Success: true, Depth: 0},
		{URL: "https://x.com/a", Success: true, Depth: 1, ParentURL: "https://x.com"},
		{URL: "https://x.com/b", Success: true, Depth: 1, ParentURL: "https://x.com"},
		{URL: "https://x.com/c", Success: true, Depth: 2, ParentURL: "https://x.com/a"},
	}

	s := Compute(pages, "dfs")
	if len(s.CrawlPaths) != 2 {
		t.Fatalf("got %d paths, want 2: %v", len(s.CrawlPaths), s.CrawlPaths)
	}

	longest := s.CrawlPaths[0]
	want := []string{"https://x.com", "https://x.com/a", "https://x.com/c"}
	if len(longest) != len(want) {
		t.Fatalf("longest path = %v, want %v", longest, want)
	}
	for i := range want {
		if longest[i] != want[i] {
			t.Errorf("path[%d] = %v, want %v", i, longest[i], want[i])
		}
	}

	deepest := s.DeepestPaths(1)
	if len(deepest) != 1 || len(deepest[0]) != 3 {
		t.Errorf("DeepestPaths(1) = %v", deepest)
	}
}

func TestCompute_CrawlPathsSkipFailed(t *testing.T) {
	pages := []Page{
		{URL: "https://x.com", Success: true, Depth: 0},
		{URL: "https://x.com/dead", Success: false, Depth: 1, ParentURL: "https://x.com"},
	}

	s := Compute(pages, "dfs")
	if len(s.CrawlPaths) != 1 {
		t.Fatalf("got %d paths, want 1", len(s.CrawlPaths))
	}
	if len(s.CrawlPaths[0]) != 1 || s.CrawlPaths[0][0] != "https://x.com" {
		t.Errorf("path = %v, want just the seed", s.CrawlPaths[0])
	}
}

func TestDeepestPaths_Bounds(t *testing.T) {
	s := &Statistics{CrawlPaths: [][]string{{"a", "b"}, {"a"}}}

	if got := s.DeepestPaths(0); got != nil {
		t.Errorf("DeepestPaths(0) = %v, want nil", got)
	}
	if got := s.DeepestPaths(10); len(got) != 2 {
		t.Errorf("DeepestPaths(10) returned %d paths, want 2", len(got))
	}
}
