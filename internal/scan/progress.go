package scan

import "sync/atomic"

// Progress is advisory scan state for display. Readers may observe a
// slightly stale current path; nothing depends on it for correctness.
type Progress struct {
	visited atomic.Int64
	found   atomic.Int64
	current atomic.Value
}

// Visited returns the number of directories looked at so far.
func (p *Progress) Visited() int64 { return p.visited.Load() }

// Found returns the number of candidate target directories so far.
func (p *Progress) Found() int64 { return p.found.Load() }

// Current returns the most recently visited path.
func (p *Progress) Current() string {
	s, _ := p.current.Load().(string)
	return s
}

func (p *Progress) visit(path string) {
	if p == nil {
		return
	}
	p.visited.Add(1)
	p.current.Store(path)
}

func (p *Progress) foundOne() {
	if p == nil {
		return
	}
	p.found.Add(1)
}
