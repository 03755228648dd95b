package frontier

// LIFO is a last-in-first-out frontier producing depth-first traversal:
// the most recently discovered entry pops first, so the crawl follows
// one path to its admissible limit before backtracking.
type LIFO struct {
	items []*Entry
}

// NewLIFO creates an empty depth-first frontier.
func NewLIFO() *LIFO {
	return &LIFO{items: make([]*Entry, 0, 64)}
}

// Push places an entry on top of the stack.
func (l *LIFO) Push(e *Entry) {
	l.items = append(l.items, e)
}

// Pop removes the top entry.
func (l *LIFO) Pop() (*Entry, bool) {
	n := len(l.items)
	if n == 0 {
		return nil, false
	}
	e := l.items[n-1]
	l.items[n-1] = nil
	l.items = l.items[:n-1]
	return e, true
}

// Len returns the number of pending entries.
func (l *LIFO) Len() int {
	return len(l.items)
}
