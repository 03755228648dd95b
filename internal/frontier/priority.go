package frontier

import "container/heap"

// Priority is a best-first frontier ordered by descending score. Ties
// break on lower depth first, then insertion order, so runs with equal
// scores stay deterministic.
type Priority struct {
	pq  entryHeap
	seq uint64
}

// NewPriority creates an empty best-first frontier.
func NewPriority() *Priority {
	p := &Priority{pq: make(entryHeap, 0, 64)}
	heap.Init(&p.pq)
	return p
}

// Push adds an entry, stamping it with the next insertion sequence.
func (p *Priority) Push(e *Entry) {
	e.seq = p.seq
	p.seq++
	heap.Push(&p.pq, e)
}

// Pop removes the highest-scored entry.
func (p *Priority) Pop() (*Entry, bool) {
	if len(p.pq) == 0 {
		return nil, false
	}
	return heap.Pop(&p.pq).(*Entry), true
}

// Len returns the number of pending entries.
func (p *Priority) Len() int {
	return len(p.pq)
}

// entryHeap implements heap.Interface over frontier entries.
type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score > h[j].Score
	}
	if h[i].Depth != h[j].Depth {
		return h[i].Depth < h[j].Depth
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(*Entry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
