package session

import (
	"fmt"
	"strings"

	"github.com/lakshaymaurya-felt/depsweep/internal/project"
)

// SortKey orders the view.
type SortKey int

const (
	SortSize SortKey = iota // largest first
	SortDate                // most recently modified first
	SortPath                // lexicographic
)

func (k SortKey) String() string {
	switch k {
	case SortSize:
		return "size"
	case SortDate:
		return "date"
	case SortPath:
		return "path"
	default:
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
}

// Next returns the key after k in the cycle size → date → path → size.
func (k SortKey) Next() SortKey {
	return (k + 1) % 3
}

// ParseSortKey maps a configuration value to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "size":
		return SortSize, nil
	case "date", "lastmodified", "modified":
		return SortDate, nil
	case "path":
		return SortPath, nil
	}
	return SortSize, fmt.Errorf("unknown sort key %q", s)
}

// Selection is the cursor, sort key and selected set. Selected entries are
// keyed by path, so reordering the view never changes what is selected.
// Index based methods resolve against the view they are given.
type Selection struct {
	Sort   SortKey
	Cursor int

	selected map[string]bool
}

// NewSelection returns an empty selection with the given sort key.
func NewSelection(key SortKey) Selection {
	return Selection{Sort: key}
}

// MoveCursor moves the cursor by delta, clamped to the view.
func (s Selection) MoveCursor(delta, length int) Selection {
	s.Cursor = clamp(s.Cursor+delta, length)
	return s
}

// SetCursor places the cursor at index, clamped to the view.
func (s Selection) SetCursor(index, length int) Selection {
	s.Cursor = clamp(index, length)
	return s
}

func clamp(i, length int) int {
	if length <= 0 || i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}

// ToggleSelection flips the entry at index in view. Out of range is a no-op.
func (s Selection) ToggleSelection(view []project.Entry, index int) Selection {
	if index < 0 || index >= len(view) {
		return s
	}
	next := s.clone()
	p := view[index].Path
	if next.selected[p] {
		delete(next.selected, p)
	} else {
		next.selected[p] = true
	}
	return next
}

// ToggleSelectAll clears the selection when every entry in view is selected
// and selects all of them otherwise.
func (s Selection) ToggleSelectAll(view []project.Entry) Selection {
	if len(view) > 0 && len(s.SelectedIndices(view)) == len(view) {
		return s.Clear()
	}
	next := s.clone()
	for _, e := range view {
		next.selected[e.Path] = true
	}
	return next
}

// CycleSort advances the sort key. The cursor returns to the top.
func (s Selection) CycleSort() Selection {
	s.Sort = s.Sort.Next()
	s.Cursor = 0
	return s
}

// Clear drops every selected entry.
func (s Selection) Clear() Selection {
	return Selection{Sort: s.Sort, Cursor: s.Cursor}
}

// IsSelected reports whether the entry at path is selected.
func (s Selection) IsSelected(path string) bool {
	return s.selected[path]
}

// Len returns the number of selected entries.
func (s Selection) Len() int {
	return len(s.selected)
}

// SelectedIndices returns the positions in view of the selected entries,
// ascending.
func (s Selection) SelectedIndices(view []project.Entry) []int {
	var out []int
	for i, e := range view {
		if s.selected[e.Path] {
			out = append(out, i)
		}
	}
	return out
}

// SelectedEntries resolves the selection against view into a snapshot.
func (s Selection) SelectedEntries(view []project.Entry) []project.Entry {
	var out []project.Entry
	for _, e := range view {
		if s.selected[e.Path] {
			out = append(out, e)
		}
	}
	return out
}

// TotalSelectedSize sums the sizes of the selected entries in view.
func (s Selection) TotalSelectedSize(view []project.Entry) int64 {
	var total int64
	for _, e := range view {
		if s.selected[e.Path] {
			total += e.Size
		}
	}
	return total
}

func (s Selection) clone() Selection {
	next := s
	next.selected = make(map[string]bool, len(s.selected)+1)
	for k, v := range s.selected {
		next.selected[k] = v
	}
	return next
}
