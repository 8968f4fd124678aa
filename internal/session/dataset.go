// Package session holds the interactive state: the discovered entries, the
// sorted view over them, the selection and the key-driven state machine.
// Everything here is pure; the terminal driver lives in internal/analyze.
package session

import (
	"sort"

	"github.com/lakshaymaurya-felt/depsweep/internal/project"
)

// Dataset is the collection of entries owned by a session. Methods never
// modify the receiver.
type Dataset struct {
	entries []project.Entry
}

// NewDataset copies entries into a new Dataset.
func NewDataset(entries []project.Entry) Dataset {
	return Dataset{entries: append([]project.Entry(nil), entries...)}
}

// Len returns the number of entries.
func (d Dataset) Len() int { return len(d.entries) }

// Entries returns a copy of the entries in discovery order.
func (d Dataset) Entries() []project.Entry {
	return append([]project.Entry(nil), d.entries...)
}

// TotalSize sums the known sizes.
func (d Dataset) TotalSize() int64 {
	var total int64
	for _, e := range d.entries {
		total += e.Size
	}
	return total
}

// Remove returns a Dataset without the given paths.
func (d Dataset) Remove(paths []string) Dataset {
	if len(paths) == 0 {
		return d
	}
	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[p] = true
	}
	kept := make([]project.Entry, 0, len(d.entries))
	for _, e := range d.entries {
		if !drop[e.Path] {
			kept = append(kept, e)
		}
	}
	return Dataset{entries: kept}
}

// SortedView returns the entries ordered by key. It is recomputed on every
// call. Ties fall back to path order so the view is deterministic.
func (d Dataset) SortedView(key SortKey) []project.Entry {
	view := d.Entries()
	sort.SliceStable(view, func(i, j int) bool {
		a, b := view[i], view[j]
		switch key {
		case SortSize:
			if a.Size != b.Size {
				return a.Size > b.Size
			}
		case SortDate:
			if !a.LastModified.Equal(b.LastModified) {
				return a.LastModified.After(b.LastModified)
			}
		}
		return a.Path < b.Path
	})
	return view
}
