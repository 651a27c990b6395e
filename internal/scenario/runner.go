// Package scenario drives an engine through the sustained-load and
// repeated-reinitialization experiments and records memory along the way.
package scenario

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/shivam-909/leakcheck/internal/corpus"
	"github.com/shivam-909/leakcheck/internal/engine"
	"github.com/shivam-909/leakcheck/internal/memsample"
)

var ErrConfig = errors.New("invalid scenario config")

// Runner owns one lifecycle client and never holds two sessions at once.
type Runner struct {
	client       *engine.Client
	sampler      memsample.Sampler
	corpus       *corpus.Corpus
	logger       *zap.Logger
	sleep        func(time.Duration)
	reclaim      bool
	engineName   string
	engineConfig string
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithSleep replaces time.Sleep for the settle delays.
func WithSleep(fn func(time.Duration)) Option {
	return func(r *Runner) { r.sleep = fn }
}

// WithReclaim forces a garbage collection and returns freed Go heap pages
// to the OS before every sample. Only useful for engines on the Go heap.
func WithReclaim(on bool) Option {
	return func(r *Runner) { r.reclaim = on }
}

// WithEngine names the engine in reports and sets the config string passed
// to its initialize call.
func WithEngine(name, config string) Option {
	return func(r *Runner) {
		r.engineName = name
		r.engineConfig = config
	}
}

func NewRunner(e engine.Engine, s memsample.Sampler, c *corpus.Corpus, opts ...Option) *Runner {
	r := &Runner{
		sampler:    s,
		corpus:     c,
		logger:     zap.NewNop(),
		sleep:      time.Sleep,
		engineName: "engine",
	}
	for _, opt := range opts {
		opt(r)
	}
	r.client = engine.NewClient(e, r.logger)
	return r
}

// Client exposes the lifecycle client, mostly for its call statistics.
func (r *Runner) Client() *engine.Client {
	return r.client
}

func (r *Runner) settle(d time.Duration) {
	if d > 0 {
		r.sleep(d)
	}
}

func (r *Runner) sample(s *Series, kind Kind, label string) error {
	if r.reclaim {
		debug.FreeOSMemory()
	}
	kb, err := r.sampler.Sample()
	if err != nil {
		return fmt.Errorf("sample %s: %w", label, err)
	}
	if kb < 0 {
		return fmt.Errorf("sample %s: %w: negative reading %d", label, memsample.ErrSamplingUnsupported, kb)
	}
	c := s.record(kind, label, kb)
	r.logger.Info("memory sample",
		zap.String("scenario", s.Scenario),
		zap.String("kind", string(kind)),
		zap.String("checkpoint", label),
		zap.Int64("resident_kb", kb),
		zap.Int64("delta_kb", c.DeltaKB),
		zap.Stringer("verdict", c.Verdict),
	)
	return nil
}

// batch runs n process+release pairs over the corpus, starting at its first
// item. Inputs that fail to process have no handle and are skipped.
func (r *Runner) batch(s *Series, n int) error {
	for i := 0; i < n; i++ {
		item := r.corpus.ItemAt(i)
		res, err := r.client.Process(item.Text)
		if err != nil {
			var procErr *engine.ProcessError
			if !errors.As(err, &procErr) {
				return err
			}
			s.ProcessErrors++
			continue
		}
		r.client.Release(&res)
		s.Processed++
	}
	return nil
}

// abort leaves the engine uninitialized after a fatal error.
func (r *Runner) abort(err error) error {
	if r.client.State() == engine.Initialized {
		if derr := r.client.Deinitialize(); derr != nil {
			r.logger.Warn("deinitialize after failure", zap.Error(derr))
		}
	}
	return err
}
