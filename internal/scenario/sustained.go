package scenario

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shivam-909/leakcheck/internal/leak"
)

const Sustained = "sustained"

// SustainedConfig configures the single long session experiment.
type SustainedConfig struct {
	Cycles     int             `yaml:"cycles"`
	Iterations int             `yaml:"iterations"`
	CycleDelay time.Duration   `yaml:"cycle_delay"`
	Settle     time.Duration   `yaml:"settle"`
	Thresholds leak.Thresholds `yaml:"thresholds"`
}

func DefaultSustained() SustainedConfig {
	return SustainedConfig{
		Cycles:     10,
		Iterations: 100,
		CycleDelay: 100 * time.Millisecond,
		Settle:     500 * time.Millisecond,
		Thresholds: leak.Thresholds{WarnKB: 2000, FailKB: 5000},
	}
}

func (c SustainedConfig) Validate() error {
	if c.Cycles < 1 || c.Iterations < 1 {
		return fmt.Errorf("%w: %s needs at least one cycle and one iteration, got %d x %d", ErrConfig, Sustained, c.Cycles, c.Iterations)
	}
	if c.CycleDelay < 0 || c.Settle < 0 {
		return fmt.Errorf("%w: %s delays must not be negative", ErrConfig, Sustained)
	}
	return c.Thresholds.Validate()
}

// RunSustained initializes once, records a baseline, runs cfg.Cycles batches
// with a sample after each, deinitializes, waits cfg.Settle and takes the
// final sample. Growth is final minus baseline. On a fatal error the series
// so far is returned without a verdict and nothing is added to rep.
func (r *Runner) RunSustained(ctx context.Context, cfg SustainedConfig, rep *Report) (*Series, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Series{Scenario: Sustained, Engine: r.engineName, Thresholds: cfg.Thresholds}
	log := r.logger.With(zap.String("scenario", Sustained))

	if err := r.client.Initialize(r.engineConfig); err != nil {
		return s, err
	}

	if err := r.sample(s, KindBaseline, "baseline"); err != nil {
		return s, r.abort(err)
	}

	for cycle := 1; cycle <= cfg.Cycles; cycle++ {
		if err := ctx.Err(); err != nil {
			return s, r.abort(err)
		}
		if err := r.batch(s, cfg.Iterations); err != nil {
			return s, r.abort(fmt.Errorf("cycle %d: %w", cycle, err))
		}
		if err := r.sample(s, KindCycle, fmt.Sprintf("cycle %d", cycle)); err != nil {
			return s, r.abort(err)
		}
		r.settle(cfg.CycleDelay)
	}

	if err := r.client.Deinitialize(); err != nil {
		return s, err
	}
	r.settle(cfg.Settle)

	if err := r.sample(s, KindFinal, "final"); err != nil {
		return s, err
	}

	o := s.finish()
	log.Info("scenario finished",
		zap.Int64("growth_kb", o.DeltaKB),
		zap.Stringer("verdict", o.Verdict),
		zap.Bool("growing", s.Growing()),
		zap.Int("process_errors", s.ProcessErrors),
	)
	if rep != nil {
		rep.Add(s)
	}
	return s, nil
}
