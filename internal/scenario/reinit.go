package scenario

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shivam-909/leakcheck/internal/leak"
)

const Reinit = "reinit"

// ReinitConfig configures the repeated initialize/deinitialize experiment.
type ReinitConfig struct {
	Rounds     int             `yaml:"rounds"`
	Iterations int             `yaml:"iterations"`
	Settle     time.Duration   `yaml:"settle"`
	Thresholds leak.Thresholds `yaml:"thresholds"`
}

func DefaultReinit() ReinitConfig {
	return ReinitConfig{
		Rounds:     5,
		Iterations: 50,
		Settle:     100 * time.Millisecond,
		Thresholds: leak.Thresholds{WarnKB: 1000, FailKB: 1000},
	}
}

func (c ReinitConfig) Validate() error {
	if c.Rounds < 1 || c.Iterations < 1 {
		return fmt.Errorf("%w: %s needs at least one round and one iteration, got %d x %d", ErrConfig, Reinit, c.Rounds, c.Iterations)
	}
	if c.Settle < 0 {
		return fmt.Errorf("%w: %s settle delay must not be negative", ErrConfig, Reinit)
	}
	return c.Thresholds.Validate()
}

// RunReinit records a baseline with no session open, then repeats
// initialize, a batch, deinitialize, settle and one sample per round.
// Growth is the last round's sample minus the baseline.
func (r *Runner) RunReinit(ctx context.Context, cfg ReinitConfig, rep *Report) (*Series, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Series{Scenario: Reinit, Engine: r.engineName, Thresholds: cfg.Thresholds}
	log := r.logger.With(zap.String("scenario", Reinit))

	if err := r.sample(s, KindBaseline, "baseline"); err != nil {
		return s, err
	}

	for round := 1; round <= cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		if err := r.client.Initialize(r.engineConfig); err != nil {
			return s, fmt.Errorf("round %d: %w", round, err)
		}
		if err := r.batch(s, cfg.Iterations); err != nil {
			return s, r.abort(fmt.Errorf("round %d: %w", round, err))
		}
		if err := r.client.Deinitialize(); err != nil {
			return s, fmt.Errorf("round %d: %w", round, err)
		}
		r.settle(cfg.Settle)
		if err := r.sample(s, KindRound, fmt.Sprintf("round %d", round)); err != nil {
			return s, err
		}
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
