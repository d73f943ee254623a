// Package config loads scriptc.toml, the optimizer settings of a project.
//
//	[wrapper]
//	root = "JavaScriptObject"   # canonical wrapper class; empty uses the unit's own
//
//	[canonicalize]
//	enabled = true
//
//	[prune]
//	enabled = true
//	strategy = "census"         # census | reachability
//	max_rounds = 1
//
//	[trace]
//	level = "off"               # off | error | phase | detail | debug
//	mode = "ring"               # stream | ring | both
//	output = ""                 # file path, "-" for stderr
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"scriptc/internal/prune"
	"scriptc/internal/trace"
)

// FileName is the configuration file looked up by Find.
const FileName = "scriptc.toml"

// Config is the decoded scriptc.toml.
type Config struct {
	Path string `toml:"-"` // file the config was loaded from, empty for defaults

	Wrapper      WrapperConfig `toml:"wrapper"`
	Canonicalize PassConfig    `toml:"canonicalize"`
	Prune        PruneConfig   `toml:"prune"`
	Trace        TraceConfig   `toml:"trace"`
}

// WrapperConfig selects the canonical wrapper class.
type WrapperConfig struct {
	Root string `toml:"root"`
}

// PassConfig toggles a pass.
type PassConfig struct {
	Enabled bool `toml:"enabled"`
}

// PruneConfig configures dead function elimination.
type PruneConfig struct {
	Enabled   bool   `toml:"enabled"`
	Strategy  string `toml:"strategy"`
	MaxRounds int    `toml:"max_rounds"`
}

// TraceConfig holds tracing defaults; command-line flags override them.
type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Default returns the configuration used when no scriptc.toml exists.
func Default() Config {
	return Config{
		Canonicalize: PassConfig{Enabled: true},
		Prune: PruneConfig{
			Enabled:   true,
			Strategy:  prune.StrategyCensus.String(),
			MaxRounds: 1,
		},
		Trace: TraceConfig{
			Level: trace.LevelOff.String(),
			Mode:  trace.ModeRing.String(),
		},
	}
}

// PruneStrategy returns the parsed prune strategy.
func (c Config) PruneStrategy() (prune.Strategy, error) {
	return prune.ParseStrategy(c.Prune.Strategy)
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Prune.MaxRounds < 1 {
		errs = append(errs, fmt.Errorf("[prune].max_rounds must be at least 1, got %d", c.Prune.MaxRounds))
	}
	if _, err := c.PruneStrategy(); err != nil {
		errs = append(errs, fmt.Errorf("[prune].strategy: %w", err))
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, fmt.Errorf("[trace].level: %w", err))
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		errs = append(errs, fmt.Errorf("[trace].mode: %w", err))
	}
	if strings.TrimSpace(c.Wrapper.Root) != c.Wrapper.Root {
		errs = append(errs, fmt.Errorf("[wrapper].root has surrounding spaces: %q", c.Wrapper.Root))
	}
	return errors.Join(errs...)
}

// Load reads path over the defaults. Keys left out keep their default value;
// unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("wrapper", "root") && strings.TrimSpace(cfg.Wrapper.Root) == "" {
		return Config{}, fmt.Errorf("%s: [wrapper].root is empty; remove it to use the unit's wrapper root", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Find walks up from startDir to locate scriptc.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Resolve loads explicit when set, otherwise the nearest scriptc.toml above
// startDir, otherwise the defaults.
func Resolve(explicit, startDir string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}
