package crawler

import "github.com/lukemcguire/linkrot/result"

// crawlState is the mutable state of one Run. It is owned by the
// coordinator goroutine.
type crawlState struct {
	visited *VisitedSet
	all     map[string]result.Resource
	broken  []result.Resource
	pages   int
	checks  int
}

func newCrawlState() *crawlState {
	return &crawlState{
		visited: NewVisitedSet(),
		all:     make(map[string]result.Resource),
	}
}

// record stores the latest outcome for res.URL and appends it to the broken
// list when it failed.
func (s *crawlState) record(res result.Resource) {
	s.all[res.URL] = res
	if res.Broken {
		s.broken = append(s.broken, res)
	}
}
