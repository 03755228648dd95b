package state

import (
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// VisitedSet Tests
// =============================================================================

func TestVisitedSet_MarkAndContains(t *testing.T) {
	v := NewVisitedSet(100)

	if v.Contains("https://example.com") {
		t.Error("fresh set should not contain anything")
	}

	if !v.MarkVisited("https://example.com") {
		t.Error("first MarkVisited should return true")
	}
	if v.MarkVisited("https://example.com") {
		t.Error("second MarkVisited should return false")
	}
	if !v.Contains("https://example.com") {
		t.Error("Contains should report marked URL")
	}
	if v.Count() != 1 {
		t.Errorf("Count() = %v, want 1", v.Count())
	}
}

func TestVisitedSet_ConcurrentMarking(t *testing.T) {
	v := NewVisitedSet(1000)
	url := "https://example.com/contested"

	var wg sync.WaitGroup
	wins := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- v.MarkVisited(url)
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("exactly one goroutine should win the mark, got %d", winners)
	}
}

func TestVisitedSet_All(t *testing.T) {
	v := NewVisitedSet(10)
	urls := []string{"https://a.com", "https://b.com", "https://c.com"}
	for _, u := range urls {
		v.MarkVisited(u)
	}

	all := v.All()
	if len(all) != len(urls) {
		t.Fatalf("All() returned %d URLs, want %d", len(all), len(urls))
	}
	seen := make(map[string]bool)
	for _, u := range all {
		seen[u] = true
	}
	for _, u := range urls {
		if !seen[u] {
			t.Errorf("All() missing %v", u)
		}
	}
}

// =============================================================================
// Archive Tests
// =============================================================================

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "crawl.db"))
	if err != nil {
		t.Fatalf("OpenArchive() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchive_SaveAndLoad(t *testing.T) {
	a := newTestArchive(t)

	run := &RunRecord{
		Seed:      "https://example.com",
		Strategy:  "bfs",
		StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Pages: []PageRecord{
			{URL: "https://example.com", Success: true, Depth: 0},
			{URL: "https://example.com/a", Success: true, Depth: 1, ParentURL: "https://example.com"},
		},
	}

	if err := a.SaveRun(run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if run.ID == "" {
		t.Fatal("SaveRun should assign an ID")
	}

	loaded, err := a.LoadRun(run.ID)
	if err != nil {
		t.Fatalf("LoadRun() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadRun() returned nil for stored run")
	}
	if loaded.Seed != run.Seed {
		t.Errorf("Seed = %v, want %v", loaded.Seed, run.Seed)
	}
	if len(loaded.Pages) != 2 {
		t.Errorf("Pages count = %v, want 2", len(loaded.Pages))
	}
}

func TestArchive_LoadMissing(t *testing.T) {
	a := newTestArchive(t)

	run, err := a.LoadRun("does-not-exist")
	if err != nil {
		t.Fatalf("LoadRun() error = %v", err)
	}
	if run != nil {
		t.Errorf("LoadRun() on missing ID = %v, want nil", run)
	}
}

func TestArchive_LatestRun(t *testing.T) {
	a := newTestArchive(t)

	if run, err := a.LatestRun(); err != nil || run != nil {
		t.Fatalf("LatestRun() on empty archive = (%v, %v), want (nil, nil)", run, err)
	}

	first := &RunRecord{Seed: "https://first.com", StartedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	second := &RunRecord{Seed: "https://second.com", StartedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	for _, r := range []*RunRecord{first, second} {
		if err := a.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}

	latest, err := a.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if latest == nil || latest.Seed != "https://second.com" {
		t.Errorf("LatestRun() seed = %v, want https://second.com", latest)
	}

	ids, err := a.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ListRuns() count = %v, want 2", len(ids))
	}
}
