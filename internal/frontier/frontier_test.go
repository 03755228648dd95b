package frontier

import (
	"testing"
)

// =============================================================================
// FIFO Tests
// =============================================================================

func TestFIFO_Ordering(t *testing.T) {
	f := NewFIFO()
	urls := []string{"https://a.com", "https://b.com", "https://c.com"}
	for i, u := range urls {
		f.Push(&Entry{URL: u, Depth: i})
	}

	for i, want := range urls {
		e, ok := f.Pop()
		if !ok {
			t.Fatalf("Pop() %d returned empty", i)
		}
		if e.URL != want {
			t.Errorf("Pop() %d = %v, want %v", i, e.URL, want)
		}
	}

	if _, ok := f.Pop(); ok {
		t.Error("Pop() on drained frontier should return false")
	}
}

func TestFIFO_DepthLayering(t *testing.T) {
	f := NewFIFO()
	f.Push(&Entry{URL: "https://x.com/a", Depth: 1})
	f.Push(&Entry{URL: "https://x.com/b", Depth: 1})
	f.Push(&Entry{URL: "https://x.com/c", Depth: 2})

	seen := make([]int, 0, 3)
	for {
		e, ok := f.Pop()
		if !ok {
			break
		}
		seen = append(seen, e.Depth)
	}

	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Errorf("depth order %v not monotone", seen)
		}
	}
}

func TestFIFO_Compaction(t *testing.T) {
	f := NewFIFO()
	for i := 0; i < 5000; i++ {
		f.Push(&Entry{URL: "https://x.com", Depth: i})
	}
	for i := 0; i < 4000; i++ {
		if _, ok := f.Pop(); !ok {
			t.Fatalf("Pop() %d returned empty", i)
		}
	}
	if f.Len() != 1000 {
		t.Errorf("Len() = %v, want 1000", f.Len())
	}
}

// =============================================================================
// LIFO Tests
// =============================================================================

func TestLIFO_Ordering(t *testing.T) {
	l := NewLIFO()
	l.Push(&Entry{URL: "https://x.com/first"})
	l.Push(&Entry{URL: "https://x.com/second"})
	l.Push(&Entry{URL: "https://x.com/third"})

	want := []string{"https://x.com/third", "https://x.com/second", "https://x.com/first"}
	for i, w := range want {
		e, ok := l.Pop()
		if !ok {
			t.Fatalf("Pop() %d returned empty", i)
		}
		if e.URL != w {
			t.Errorf("Pop() %d = %v, want %v", i, e.URL, w)
		}
	}
}

func TestLIFO_Empty(t *testing.T) {
	l := NewLIFO()
	if l.Len() != 0 {
		t.Errorf("Len() = %v, want 0", l.Len())
	}
	if _, ok := l.Pop(); ok {
		t.Error("Pop() on empty frontier should return false")
	}
}

// =============================================================================
// Priority Tests
// =============================================================================

func TestPriority_ScoreOrdering(t *testing.T) {
	p := NewPriority()
	p.Push(&Entry{URL: "https://x.com/low", Score: 0.1})
	p.Push(&Entry{URL: "https://x.com/high", Score: 0.9})
	p.Push(&Entry{URL: "https://x.com/mid", Score: 0.5})

	want := []string{"https://x.com/high", "https://x.com/mid", "https://x.com/low"}
	for i, w := range want {
		e, ok := p.Pop()
		if !ok {
			t.Fatalf("Pop() %d returned empty", i)
		}
		if e.URL != w {
			t.Errorf("Pop() %d = %v, want %v", i, e.URL, w)
		}
	}
}

func TestPriority_TieBreak(t *testing.T) {
	p := NewPriority()
	p.Push(&Entry{URL: "https://x.com/deep", Score: 0.5, Depth: 3})
	p.Push(&Entry{URL: "https://x.com/shallow", Score: 0.5, Depth: 1})

	e, _ := p.Pop()
	if e.URL != "https://x.com/shallow" {
		t.Errorf("equal scores should pop lower depth first, got %v", e.URL)
	}
}

func TestPriority_InsertionOrderStable(t *testing.T) {
	p := NewPriority()
	p.Push(&Entry{URL: "https://x.com/one", Score: 0.5, Depth: 1})
	p.Push(&Entry{URL: "https://x.com/two", Score: 0.5, Depth: 1})
	p.Push(&Entry{URL: "https://x.com/three", Score: 0.5, Depth: 1})

	want := []string{"https://x.com/one", "https://x.com/two", "https://x.com/three"}
	for i, w := range want {
		e, ok := p.Pop()
		if !ok {
			t.Fatalf("Pop() %d returned empty", i)
		}
		if e.URL != w {
			t.Errorf("Pop() %d = %v, want %v (insertion order)", i, e.URL, w)
		}
	}
}

// =============================================================================
// Factory Tests
// =============================================================================

func TestNew_StrategySelection(t *testing.T) {
	tests := []struct {
		strategy string
		want     string
	}{
		{"bfs", "*frontier.FIFO"},
		{"dfs", "*frontier.LIFO"},
		{"depth-first", "*frontier.LIFO"},
		{"best-first", "*frontier.Priority"},
		{"best", "*frontier.Priority"},
		{"", "*frontier.FIFO"},
		{"unknown", "*frontier.FIFO"},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			f := New(tt.strategy)
			got := typeName(f)
			if got != tt.want {
				t.Errorf("New(%q) = %v, want %v", tt.strategy, got, tt.want)
			}
		})
	}
}

func typeName(f Frontier) string {
	switch f.(type) {
	case *FIFO:
		return "*frontier.FIFO"
	case *LIFO:
		return "*frontier.LIFO"
	case *Priority:
		return "*frontier.Priority"
	default:
		return "unknown"
	}
}
