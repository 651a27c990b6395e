package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivam-909/leakcheck/internal/leak"
	"github.com/shivam-909/leakcheck/internal/scenario"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leakcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sound", cfg.Engine.Mode)
	assert.Equal(t, "peak", cfg.Sampler)
	assert.Equal(t, []string{scenario.Sustained, scenario.Reinit}, cfg.Scenarios)
	assert.Equal(t, 10, cfg.Sustained.Cycles)
	assert.Equal(t, 100, cfg.Sustained.Iterations)
	assert.Equal(t, 500*time.Millisecond, cfg.Sustained.Settle)
	assert.Equal(t, leak.Thresholds{WarnKB: 2000, FailKB: 5000}, cfg.Sustained.Thresholds)
	assert.Equal(t, 5, cfg.Reinit.Rounds)
	assert.Equal(t, leak.Thresholds{WarnKB: 1000, FailKB: 1000}, cfg.Reinit.Thresholds)
	assert.False(t, cfg.Report.Strict)
	assert.True(t, cfg.Reclaim, "Go heap garbage is returned before every sample")
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
engine:
  mode: leak-pool
sampler: resident
scenarios: [reinit]
sustained:
  cycle_delay: 0s
reinit:
  rounds: 8
  settle: 250ms
  thresholds:
    warn_kb: 300
    fail_kb: 900
report:
  format: json
  strict: true
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "leak-pool", cfg.Engine.Mode)
	assert.Equal(t, "builtin", cfg.Engine.Dictionary, "unset keys keep their defaults")
	assert.Equal(t, "resident", cfg.Sampler)
	assert.Equal(t, []string{scenario.Reinit}, cfg.Scenarios)
	assert.Equal(t, time.Duration(0), cfg.Sustained.CycleDelay)
	assert.Equal(t, 10, cfg.Sustained.Cycles)
	assert.Equal(t, 8, cfg.Reinit.Rounds)
	assert.Equal(t, 50, cfg.Reinit.Iterations)
	assert.Equal(t, 250*time.Millisecond, cfg.Reinit.Settle)
	assert.Equal(t, leak.Thresholds{WarnKB: 300, FailKB: 900}, cfg.Reinit.Thresholds)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.True(t, cfg.Report.Strict)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "engine: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "engine:\n  mode: heap\n")
	t.Setenv("LEAKCHECK_ENGINE", "leak-results")
	t.Setenv("LEAKCHECK_SCENARIOS", "sustained, reinit ,")
	t.Setenv("LEAKCHECK_STRICT", "true")
	t.Setenv("LEAKCHECK_RECLAIM", "0")
	t.Setenv("LEAKCHECK_METRICS_FILE", "/tmp/leak.prom")
	t.Setenv("LEAKCHECK_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "leak-results", cfg.Engine.Mode)
	assert.Equal(t, []string{"sustained", "reinit"}, cfg.Scenarios)
	assert.True(t, cfg.Report.Strict)
	assert.False(t, cfg.Reclaim)
	assert.Equal(t, "/tmp/leak.prom", cfg.Report.MetricsFile)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestEnvOverrideBadBool(t *testing.T) {
	t.Setenv("LEAKCHECK_STRICT", "maybe")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"engine", func(c *Config) { c.Engine.Mode = "mecab" }},
		{"sampler", func(c *Config) { c.Sampler = "pss" }},
		{"format", func(c *Config) { c.Report.Format = "html" }},
		{"no scenarios", func(c *Config) { c.Scenarios = nil }},
		{"unknown scenario", func(c *Config) { c.SetScenarios("sustained,soak") }},
		{"sustained cycles", func(c *Config) { c.Sustained.Cycles = 0 }},
		{"reinit thresholds", func(c *Config) { c.Reinit.Thresholds = leak.Thresholds{WarnKB: 2, FailKB: 1} }},
		{"log level", func(c *Config) { c.Logging.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestValidateSkipsUnselectedScenario(t *testing.T) {
	cfg := Default()
	cfg.Scenarios = []string{scenario.Reinit}
	cfg.Sustained.Cycles = 0
	assert.NoError(t, cfg.Validate())
}
