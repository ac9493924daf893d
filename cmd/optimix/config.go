package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

const configFileName = "optimix.toml"

type projectConfig struct {
	Run   runConfig   `toml:"run"`
	Trace traceConfig `toml:"trace"`
}

type runConfig struct {
	SSA        bool  `toml:"ssa"`
	MaxSteps   int64 `toml:"max_steps"`
	LenientPhi bool  `toml:"lenient_phi"`
	Jobs       int   `toml:"jobs"`
	Cache      bool  `toml:"cache"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// loadedConfig is a decoded optimix.toml and the keys it actually sets.
type loadedConfig struct {
	Path   string
	Config projectConfig
	meta   toml.MetaData
}

func (c *loadedConfig) has(key ...string) bool {
	return c != nil && c.meta.IsDefined(key...)
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func readConfig(path string) (*loadedConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Run.MaxSteps < 0 {
		return nil, fmt.Errorf("%s: [run].max_steps must not be negative", path)
	}
	if cfg.Run.Jobs < 0 {
		return nil, fmt.Errorf("%s: [run].jobs must not be negative", path)
	}
	return &loadedConfig{Path: path, Config: cfg, meta: meta}, nil
}

// flagDefaults maps config keys to the flags they feed.
func (c *loadedConfig) flagDefaults() map[string]string {
	out := make(map[string]string)
	run := c.Config.Run
	if c.has("run", "ssa") {
		out["no-ssa"] = strconv.FormatBool(!run.SSA)
	}
	if c.has("run", "max_steps") {
		out["max-steps"] = strconv.FormatInt(run.MaxSteps, 10)
	}
	if c.has("run", "lenient_phi") {
		out["lenient-phi"] = strconv.FormatBool(run.LenientPhi)
	}
	if c.has("run", "jobs") {
		out["jobs"] = strconv.Itoa(run.Jobs)
	}
	if c.has("run", "cache") {
		out["cache"] = strconv.FormatBool(run.Cache)
	}
	if c.has("trace", "level") {
		out["trace-level"] = c.Config.Trace.Level
	}
	if c.has("trace", "mode") {
		out["trace-mode"] = c.Config.Trace.Mode
	}
	if c.has("trace", "output") {
		out["trace"] = c.Config.Trace.Output
	}
	return out
}

// applyConfig sets every flag the command knows and the user did not pass.
func applyConfig(cmd *cobra.Command, cfg *loadedConfig) error {
	for name, value := range cfg.flagDefaults() {
		fl := cmd.Flags().Lookup(name)
		if fl == nil || fl.Changed {
			continue
		}
		if err := fl.Value.Set(value); err != nil {
			return fmt.Errorf("%s: invalid value %q for %s: %w", cfg.Path, value, name, err)
		}
	}
	return nil
}

// loadConfig reads --config or the nearest optimix.toml and applies it.
func loadConfig(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil || !ok {
			return err
		}
		path = found
	}
	cfg, err := readConfig(path)
	if err != nil {
		return err
	}
	log.Debugf("using %s", cfg.Path)
	return applyConfig(cmd, cfg)
}
