// Package config loads the harness configuration: defaults, then an optional
// YAML file, then LEAKCHECK_* environment overrides. Command line flags are
// applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shivam-909/leakcheck/internal/engine/tokenizer"
	"github.com/shivam-909/leakcheck/internal/logging"
	"github.com/shivam-909/leakcheck/internal/memsample"
	"github.com/shivam-909/leakcheck/internal/report"
	"github.com/shivam-909/leakcheck/internal/scenario"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Engine    EngineConfig             `yaml:"engine"`
	Sampler   string                   `yaml:"sampler"`
	Reclaim   bool                     `yaml:"reclaim"`
	Corpus    string                   `yaml:"corpus"`
	Scenarios []string                 `yaml:"scenarios"`
	Sustained scenario.SustainedConfig `yaml:"sustained"`
	Reinit    scenario.ReinitConfig    `yaml:"reinit"`
	Report    ReportConfig             `yaml:"report"`
	Logging   logging.Config           `yaml:"logging"`
}

type EngineConfig struct {
	Mode       string `yaml:"mode"`
	Dictionary string `yaml:"dictionary"`
}

type ReportConfig struct {
	Format      string `yaml:"format"`
	MetricsFile string `yaml:"metrics_file"`
	Strict      bool   `yaml:"strict"`
}

func Default() *Config {
	return &Config{
		Engine:    EngineConfig{Mode: string(tokenizer.ModeSound), Dictionary: tokenizer.BuiltinDictionary},
		Sampler:   memsample.SourcePeak,
		Reclaim:   true,
		Scenarios: []string{scenario.Sustained, scenario.Reinit},
		Sustained: scenario.DefaultSustained(),
		Reinit:    scenario.DefaultReinit(),
		Report:    ReportConfig{Format: "text"},
		Logging:   logging.DefaultConfig(),
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LEAKCHECK_ENGINE"); v != "" {
		c.Engine.Mode = v
	}
	if v := os.Getenv("LEAKCHECK_DICTIONARY"); v != "" {
		c.Engine.Dictionary = v
	}
	if v := os.Getenv("LEAKCHECK_SAMPLER"); v != "" {
		c.Sampler = v
	}
	if v := os.Getenv("LEAKCHECK_CORPUS"); v != "" {
		c.Corpus = v
	}
	if v := os.Getenv("LEAKCHECK_SCENARIOS"); v != "" {
		c.Scenarios = splitList(v)
	}
	if v := os.Getenv("LEAKCHECK_FORMAT"); v != "" {
		c.Report.Format = v
	}
	if v := os.Getenv("LEAKCHECK_METRICS_FILE"); v != "" {
		c.Report.MetricsFile = v
	}
	if v := os.Getenv("LEAKCHECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LEAKCHECK_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	for name, dst := range map[string]*bool{
		"LEAKCHECK_STRICT":  &c.Report.Strict,
		"LEAKCHECK_RECLAIM": &c.Reclaim,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, name, v)
		}
		*dst = b
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SetScenarios replaces the scenario list from a comma separated value.
func (c *Config) SetScenarios(v string) {
	c.Scenarios = splitList(v)
}

func (c *Config) Validate() error {
	modeOK := false
	for _, m := range tokenizer.Modes() {
		modeOK = modeOK || string(m) == c.Engine.Mode
	}
	if !modeOK {
		return fmt.Errorf("%w: engine mode %q (want one of %v)", ErrInvalid, c.Engine.Mode, tokenizer.Modes())
	}
	if c.Sampler != memsample.SourcePeak && c.Sampler != memsample.SourceResident {
		return fmt.Errorf("%w: sampler %q (want %s or %s)", ErrInvalid, c.Sampler, memsample.SourcePeak, memsample.SourceResident)
	}
	if !slices.Contains(report.Formats(), c.Report.Format) {
		return fmt.Errorf("%w: report format %q (want one of %v)", ErrInvalid, c.Report.Format, report.Formats())
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios selected", ErrInvalid)
	}
	for _, s := range c.Scenarios {
		switch s {
		case scenario.Sustained:
			if err := c.Sustained.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalid, err)
			}
		case scenario.Reinit:
			if err := c.Reinit.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalid, err)
			}
		default:
			return fmt.Errorf("%w: unknown scenario %q (want %s or %s)", ErrInvalid, s, scenario.Sustained, scenario.Reinit)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
