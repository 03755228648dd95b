package frontier

// FIFO is a first-in-first-out frontier producing breadth-first
// traversal: all depth-d entries pop before any depth-(d+1) entry.
type FIFO struct {
	items []*Entry
	head  int
}

// NewFIFO creates an empty breadth-first frontier.
func NewFIFO() *FIFO {
	return &FIFO{items: make([]*Entry, 0, 64)}
}

// Push appends an entry at the tail.
func (f *FIFO) Push(e *Entry) {
	f.items = append(f.items, e)
}

// Pop removes the oldest entry.
func (f *FIFO) Pop() (*Entry, bool) {
	if f.head >= len(f.items) {
		return nil, false
	}
	e := f.items[f.head]
	f.items[f.head] = nil
	f.head++

	// Reclaim the consumed prefix once it dominates the backing slice.
	if f.head > 1024 && f.head*2 >= len(f.items) {
		f.items = append(f.items[:0], f.items[f.head:]...)
		f.head = 0
	}
	return e, true
}

// Len returns the number of pending entries.
func (f *FIFO) Len() int {
	return len(f.items) - f.head
}
