package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// PatternTables are the static path tables consulted by the path filter.
// Skip, Allow and Deny are slash separated and matched case-insensitively
// against "/"+relative+"/", so "/.git/" matches a .git segment but not
// .github. System entries are absolute locations matched by prefix.
type PatternTables struct {
	// System prunes OS, virtual-filesystem and application install
	// locations. Entries are absolute; a user folder with the same name
	// elsewhere is not affected.
	System []string

	// Skip prunes version control, bundle, trash and cache directories
	// wherever they appear.
	Skip []string

	// Allow exempts developer tool caches from System and Skip.
	Allow []string

	// Deny lists analytics and sync caches that stay pruned even when an
	// Allow pattern matches.
	Deny []string
}

// DefaultPatternTables returns the built-in tables for the running OS.
func DefaultPatternTables() PatternTables {
	home, _ := os.UserHomeDir()
	return DefaultPatternTablesFor(runtime.GOOS, home)
}

// DefaultPatternTablesFor returns the built-in tables for goos, with "~"
// in system locations resolved against home. System locations under an
// empty home are left out.
func DefaultPatternTablesFor(goos, home string) PatternTables {
	return PatternTables{
		System: systemLocations(goos, home),
		Skip:   append([]string(nil), skipPatterns...),
		Allow:  append([]string(nil), allowPatterns...),
		Deny:   append([]string(nil), denyPatterns...),
	}
}

// ─── System locations ────────────────────────────────────────────────────────

var unixSystem = []string{
	"/proc",
	"/sys",
	"/dev",
	"/run",
	"/boot",
	"/snap",
	"/var/lib/docker",
}

var darwinSystem = []string{
	"/System",
	"/Library",
	"/Applications",
	"/dev",
	"/cores",
	"~/Library",
	"~/Applications",
}

func systemLocations(goos, home string) []string {
	var locs []string
	switch goos {
	case "windows":
		for _, env := range []string{"WINDIR", "PROGRAMFILES", "PROGRAMFILES(X86)", "PROGRAMDATA"} {
			if v := os.Getenv(env); v != "" {
				locs = append(locs, v)
			}
		}
		locs = append(locs, "~/AppData")
	case "darwin":
		locs = append(locs, darwinSystem...)
	default:
		locs = append(locs, unixSystem...)
	}

	out := make([]string, 0, len(locs))
	for _, l := range locs {
		if rest, ok := strings.CutPrefix(l, "~/"); ok {
			if home == "" {
				continue
			}
			l = filepath.Join(home, filepath.FromSlash(rest))
		}
		out = append(out, l)
	}
	return out
}

// ─── Skip table ──────────────────────────────────────────────────────────────

var skipPatterns = []string{
	// Version control metadata.
	"/.git/",
	"/.hg/",
	"/.svn/",

	// Filesystem bookkeeping.
	"/lost+found/",
	"/system volume information/",
	"/$recycle.bin/",

	// Application bundles.
	".app/",

	// OS caches and trash.
	"/.cache/",
	"/.trash/",
	"/.trashes/",
	"/.local/share/trash/",
	"/.spotlight-v100/",
	"/.fseventsd/",
	"/.documentrevisions-v100/",
}

// ─── Allow-override table ────────────────────────────────────────────────────

var allowPatterns = []string{
	"/.npm/",
	"/.pnpm-store/",
	"/.yarn/",
	"/.cache/yarn/",
	"/.cache/pnpm/",
	"/.cache/node/",
	"/.cache/typescript/",
	"/library/caches/yarn/",
	"/library/caches/pnpm/",
	"/library/caches/typescript/",
	"/appdata/local/yarn/",
	"/appdata/local/pnpm/",
	"/appdata/roaming/npm/",
	"/.vscode/extensions/",
	"/.cursor/extensions/",
	"/library/application support/code/",
	"/appdata/roaming/code/",
}

// ─── Deny subset ─────────────────────────────────────────────────────────────

var denyPatterns = []string{
	"/telemetry/",
	"/crashpad/",
	"/library/application support/code/user/sync/",
	"/library/application support/code/cacheddata/",
	"/appdata/roaming/code/user/sync/",
	"/appdata/roaming/code/cacheddata/",
	"/.vscode/extensions/ms-vscode-remote.remote-containers/data/",
}

// ─── Never-delete table ──────────────────────────────────────────────────────

// GetNeverDeletePaths returns locations that must never be removed, no
// matter what the scan reports. Ancestors of these are refused as well.
func GetNeverDeletePaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths,
			home,
			filepath.Join(home, ".npm"),
			filepath.Join(home, ".config"),
		)
	}

	switch runtime.GOOS {
	case "windows":
		w := os.Getenv("WINDIR")
		if w == "" {
			w = `C:\Windows`
		}
		paths = append(paths, w, os.Getenv("PROGRAMFILES"), os.Getenv("PROGRAMFILES(X86)"), os.Getenv("PROGRAMDATA"))
	case "darwin":
		paths = append(paths, "/System", "/Library", "/Applications", "/usr", "/bin", "/sbin", "/private")
	default:
		paths = append(paths, "/usr", "/bin", "/sbin", "/lib", "/lib64", "/etc", "/opt", "/var", "/boot")
	}
	return paths
}
