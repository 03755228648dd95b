// Package frontier provides the ordering data structures that drive
// crawl traversal. Each strategy (breadth-first, depth-first, best-first)
// is a separate implementation behind one interface.
package frontier

// Entry is a single not-yet-fetched URL awaiting dispatch.
type Entry struct {
	URL       string
	Depth     int
	ParentURL string

	// Score is the priority assigned at push time. Only the best-first
	// frontier orders by it; the others ignore it.
	Score float64

	// seq is the insertion order, used as the final tie-break so equal
	// scores pop deterministically.
	seq uint64
}

// Frontier is the common contract shared by all traversal strategies.
// Implementations are not safe for concurrent use; the scheduler owns
// the single critical section that covers frontier and visited set.
type Frontier interface {
	// Push adds an entry to the frontier.
	Push(e *Entry)

	// Pop removes and returns the next entry in strategy order.
	// The second return value is false when the frontier is empty.
	Pop() (*Entry, bool)

	// Len returns the number of pending entries.
	Len() int
}

// New returns a frontier for the named strategy. Unknown names fall
// back to breadth-first.
func New(strategy string) Frontier {
	switch strategy {
	case "dfs", "depth-first":
		return NewLIFO()
	case "best-first", "best":
		return NewPriority()
	default:
		return NewFIFO()
	}
}
