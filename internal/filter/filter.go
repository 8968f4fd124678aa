// Package filter decides which paths are pruned from a scan.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/lakshaymaurya-felt/depsweep/internal/config"
)

// Filter applies the static system/skip/allow/deny tables. It holds no mutable
// state and is safe for concurrent use.
type Filter struct {
	system []string
	skip   []string
	allow  []string
	deny   []string
}

// New builds a Filter from the given tables.
func New(tables config.PatternTables) *Filter {
	system := make([]string, 0, len(tables.System))
	for _, s := range tables.System {
		if s == "" {
			continue
		}
		if s = absKey(s); s != "/" {
			system = append(system, s)
		}
	}
	return &Filter{
		system: system,
		skip:   lowerAll(tables.Skip),
		allow:  lowerAll(tables.Allow),
		deny:   lowerAll(tables.Deny),
	}
}

// ShouldPrune reports whether rel, a path relative to root, is excluded by
// the system or skip tables. An allow pattern wins unless a deny pattern
// also matches. A directory on the way to an allowed path is kept so the
// allowed path can still be reached.
func (f *Filter) ShouldPrune(root, rel string) bool {
	p := key(rel)
	skipped := matchAny(p, f.skip) || f.inSystem(root, rel)
	if matchAny(p, f.deny) {
		return skipped
	}
	if matchAny(p, f.allow) || leadsTo(p, f.allow) {
		return false
	}
	return skipped
}

// inSystem reports whether root/rel lies in a system location. A root that
// is itself inside that location was chosen explicitly and is not pruned
// by it.
func (f *Filter) inSystem(root, rel string) bool {
	if len(f.system) == 0 {
		return false
	}
	r := absKey(root)
	a := absKey(filepath.Join(root, filepath.FromSlash(rel)))
	for _, s := range f.system {
		if under(a, s) && !under(r, s) {
			return true
		}
	}
	return false
}

// Excluded reports whether rel contains any of the caller supplied substrings.
func Excluded(rel string, excludes []string) bool {
	if len(excludes) == 0 {
		return false
	}
	p := filepath.ToSlash(rel)
	for _, e := range excludes {
		e = strings.TrimSpace(filepath.ToSlash(e))
		if e != "" && strings.Contains(p, e) {
			return true
		}
	}
	return false
}

// Hidden reports whether any segment of rel starts with a dot. When
// includeLast is false the final segment is ignored, so a hidden target
// name itself does not count.
func Hidden(rel string, includeLast bool) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if !includeLast && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	for _, part := range parts {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

func key(rel string) string {
	p := strings.ToLower(filepath.ToSlash(rel))
	p = strings.Trim(p, "/")
	return "/" + p + "/"
}

func absKey(p string) string {
	return strings.ToLower(filepath.ToSlash(filepath.Clean(p)))
}

// under reports whether p is s or inside it.
func under(p, s string) bool {
	return p == s || strings.HasPrefix(p, s+"/")
}

func matchAny(p string, patterns []string) bool {
	for _, pat := range patterns {
		if strings.Contains(p, pat) {
			return true
		}
	}
	return false
}

// leadsTo reports whether a trailing run of whole segments of p is a
// proper prefix of some pattern, i.e. p may be an ancestor of a match.
func leadsTo(p string, patterns []string) bool {
	for i := 0; i < len(p)-1; i++ {
		if p[i] != '/' {
			continue
		}
		tail := p[i:]
		for _, pat := range patterns {
			if len(tail) < len(pat) && strings.HasPrefix(pat, tail) {
				return true
			}
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out
}
