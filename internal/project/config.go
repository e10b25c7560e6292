package project

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the decoded gramlint.toml.
type Config struct {
	Path   string       `toml:"-"`
	Root   string       `toml:"-"`
	Check  CheckConfig  `toml:"check"`
	Output OutputConfig `toml:"output"`
}

// CheckConfig holds the [check] table.
type CheckConfig struct {
	Language     string   `toml:"language"`
	MotherTongue string   `toml:"mother_tongue"`
	Enable       []string `toml:"enable"`
	Disable      []string `toml:"disable"`
	Jobs         int      `toml:"jobs"`
	Timeout      string   `toml:"timeout"`
	Cache        bool     `toml:"cache"`

	// разобранный Timeout
	TimeoutDuration time.Duration `toml:"-"`
}

// OutputConfig holds the [output] table.
type OutputConfig struct {
	Format     string `toml:"format"`
	MaxMatches int    `toml:"max_matches"`
}

var outputFormats = []string{"pretty", "json", "xml", "sarif"}

// Load finds gramlint.toml above startDir and decodes it. ok is false when
// there is no config file.
func Load(startDir string) (*Config, bool, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// LoadFile decodes and validates the config at path. Unknown keys are errors.
func LoadFile(path string) (*Config, error) {
	var cfg Config
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
	if meta.IsDefined("check", "timeout") {
		d, err := time.ParseDuration(cfg.Check.Timeout)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%s: invalid [check].timeout %q", path, cfg.Check.Timeout)
		}
		cfg.Check.TimeoutDuration = d
	}
	if cfg.Check.Jobs < 0 {
		return nil, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if meta.IsDefined("output", "format") && !slices.Contains(outputFormats, cfg.Output.Format) {
		return nil, fmt.Errorf("%s: [output].format must be one of %s", path, strings.Join(outputFormats, ", "))
	}
	if cfg.Output.MaxMatches < 0 {
		return nil, fmt.Errorf("%s: [output].max_matches must not be negative", path)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return &cfg, nil
}
