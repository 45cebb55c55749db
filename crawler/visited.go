package crawler

import "sync"

// VisitedSet records the pages scheduled for fetching and the BFS depth they
// were first discovered at.
type VisitedSet struct {
	mu     sync.Mutex
	depths map[string]int
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{depths: make(map[string]int)}
}

// VisitIfNew atomically checks if a URL is visited and marks it at depth if not.
// Returns true if the URL was new (not previously visited), false if already visited.
func (v *VisitedSet) VisitIfNew(url string, depth int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.depths[url]; ok {
		return false
	}
	v.depths[url] = depth
	return true
}

// Len returns the number of visited URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.depths)
}

// Snapshot returns a copy of the URL to depth mapping.
func (v *VisitedSet) Snapshot() map[string]int {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make(map[string]int, len(v.depths))
	for u, d := range v.depths {
		out[u] = d
	}
	return out
}
