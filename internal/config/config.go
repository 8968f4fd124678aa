package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Sort keys accepted by the "sort" setting.
const (
	SortSize = "size"
	SortDate = "date"
	SortPath = "path"
)

// Size estimation modes.
const (
	SizeModeAuto = "auto"
	SizeModeWalk = "walk"
)

// Scan strategies.
const (
	StrategyAuto = "auto"
	StrategyGlob = "glob"
	StrategyWalk = "walk"
)

// DefaultTarget is the directory name searched for when none is given.
const DefaultTarget = "node_modules"

// Config represents the resolved depsweep settings.
type Config struct {
	Directories   []string `mapstructure:"directories"`    // scan roots
	Target        string   `mapstructure:"target"`         // directory name to find
	Exclude       []string `mapstructure:"exclude"`        // path substrings never scanned
	ExcludeHidden bool     `mapstructure:"exclude_hidden"` // skip dot directories
	HideErrors    bool     `mapstructure:"hide_errors"`    // suppress traversal errors
	Depth         int      `mapstructure:"depth"`          // 0 = unlimited
	Full          bool     `mapstructure:"full"`           // scan from the home directory
	DryRun        bool     `mapstructure:"dry_run"`
	DeleteAll     bool     `mapstructure:"delete_all"`
	Sort          string   `mapstructure:"sort"`
	SizeMode      string   `mapstructure:"size_mode"`
	Strategy      string   `mapstructure:"strategy"`
	BatchSize     int      `mapstructure:"batch_size"`
	Manifest      string   `mapstructure:"manifest"`
	ActiveDays    int      `mapstructure:"active_days"`
	CheckUpdates  bool     `mapstructure:"check_updates"`
	GB            bool     `mapstructure:"gb"`
	JSON          bool     `mapstructure:"json"`
	Debug         bool     `mapstructure:"debug"`
	LogFile       string   `mapstructure:"log_file"`
}

// flagKeys maps cobra flag names onto config keys.
var flagKeys = map[string]string{
	"directory":                  "directories",
	"target":                     "target",
	"exclude":                    "exclude",
	"exclude-hidden-directories": "exclude_hidden",
	"hide-errors":                "hide_errors",
	"depth":                      "depth",
	"full":                       "full",
	"dry-run":                    "dry_run",
	"delete-all":                 "delete_all",
	"sort":                       "sort",
	"size-mode":                  "size_mode",
	"strategy":                   "strategy",
	"batch-size":                 "batch_size",
	"manifest":                   "manifest",
	"active-days":                "active_days",
	"check-updates":              "check_updates",
	"gb":                         "gb",
	"json":                       "json",
	"debug":                      "debug",
	"log-file":                   "log_file",
}

// Load resolves settings from defaults, the config file, DEPSWEEP_*
// environment variables and finally any flags the user set explicitly.
// configPath may be empty to use the default search locations.
func Load(flags *pflag.FlagSet, configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("directories", []string{"."})
	v.SetDefault("target", DefaultTarget)
	v.SetDefault("exclude", []string{})
	v.SetDefault("exclude_hidden", false)
	v.SetDefault("hide_errors", false)
	v.SetDefault("depth", 0)
	v.SetDefault("full", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("delete_all", false)
	v.SetDefault("sort", SortSize)
	v.SetDefault("size_mode", SizeModeAuto)
	v.SetDefault("strategy", StrategyAuto)
	v.SetDefault("batch_size", 50)
	v.SetDefault("manifest", "package.json")
	v.SetDefault("active_days", 30)
	v.SetDefault("check_updates", true)
	v.SetDefault("gb", false)
	v.SetDefault("json", false)
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("DEPSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, explicit string) error {
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", explicit, err)
		}
		return nil
	}

	for _, candidate := range defaultConfigPaths() {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		v.SetConfigFile(candidate)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", candidate, err)
		}
		return nil
	}
	return nil
}

func defaultConfigPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "depsweep", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "depsweep", "config.yaml"))
	}
	return paths
}

// Validate rejects settings the scan cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return errors.New("config: target must not be empty")
	}
	if strings.ContainsAny(c.Target, `/\`) {
		return fmt.Errorf("config: target %q must be a directory name, not a path", c.Target)
	}
	if c.Depth < 0 {
		return errors.New("config: depth must be >= 0")
	}
	if c.BatchSize < 1 {
		return errors.New("config: batch_size must be >= 1")
	}
	if c.ActiveDays < 0 {
		return errors.New("config: active_days must be >= 0")
	}
	switch c.Sort {
	case SortSize, SortDate, SortPath:
	default:
		return fmt.Errorf("config: unknown sort %q (want size, date or path)", c.Sort)
	}
	switch c.SizeMode {
	case SizeModeAuto, SizeModeWalk:
	default:
		return fmt.Errorf("config: unknown size_mode %q (want auto or walk)", c.SizeMode)
	}
	switch c.Strategy {
	case StrategyAuto, StrategyGlob, StrategyWalk:
	default:
		return fmt.Errorf("config: unknown strategy %q (want auto, glob or walk)", c.Strategy)
	}
	return nil
}

// Roots returns the absolute scan roots: the home directory in full mode,
// otherwise the configured directories.
func (c *Config) Roots() ([]string, error) {
	dirs := c.Directories
	if c.Full {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dirs = []string{home}
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	roots := make([]string, 0, len(dirs))
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(expandHome(d))
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", d, err)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		roots = append(roots, abs)
	}
	return roots, nil
}

// ActiveWindow is the recency threshold for marking an entry active.
func (c *Config) ActiveWindow() time.Duration {
	return time.Duration(c.ActiveDays) * 24 * time.Hour
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
