package scan

import (
	"path/filepath"
	"strings"

	"github.com/lakshaymaurya-felt/depsweep/internal/filter"
)

// Strategy names accepted by Options.Strategy.
const (
	StrategyAuto = "auto"
	StrategyGlob = "glob"
	StrategyWalk = "walk"
)

// DefaultBatchSize is the number of work items dispatched together.
const DefaultBatchSize = 50

// Options is the immutable configuration of one scan.
type Options struct {
	Roots         []string
	Target        string
	Exclude       []string
	ExcludeHidden bool
	HideErrors    bool

	// Depth bounds the number of path segments from a root to a match.
	// 0 means unlimited.
	Depth int

	Strategy  string
	BatchSize int

	// Filter prunes system and cache paths. nil disables the skip tables.
	Filter *filter.Filter
}

// Candidate is a target directory found under a root, not yet built into an entry.
type Candidate struct {
	Path string // absolute
	Rel  string // relative to the root, slash separated
}

// Project returns the directory containing the target.
func (c Candidate) Project() string {
	return filepath.Dir(c.Path)
}

// withinDepth reports whether a match with n segments is inside the depth bound.
func (o Options) withinDepth(n int) bool {
	return o.Depth == 0 || n <= o.Depth
}

// canDescend reports whether a directory at depth d may be listed, i.e.
// whether its children are still inside the depth bound.
func (o Options) canDescend(d int) bool {
	return o.Depth == 0 || d < o.Depth
}

// pruned applies the path tables, the exclude list and the hidden rule to
// rel under root. The final segment is exempt from the hidden rule when it
// is the target name itself.
func (o Options) pruned(root, rel string) bool {
	if o.Filter != nil && o.Filter.ShouldPrune(root, rel) {
		return true
	}
	if filter.Excluded(rel, o.Exclude) {
		return true
	}
	if o.ExcludeHidden {
		last := rel[strings.LastIndex(rel, "/")+1:]
		return filter.Hidden(rel, last != o.Target)
	}
	return false
}

// prunedPath reports whether rel or any of its ancestors is pruned.
func (o Options) prunedPath(root, rel string) bool {
	for i := 0; i < len(rel); i++ {
		if rel[i] == '/' && o.pruned(root, rel[:i]) {
			return true
		}
	}
	return o.pruned(root, rel)
}

// nested reports whether rel contains the target segment more than once.
func (o Options) nested(rel string) bool {
	count := 0
	for _, part := range strings.Split(rel, "/") {
		if part == o.Target {
			count++
			if count > 1 {
				return true
			}
		}
	}
	return false
}
