package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/shivam-909/leakcheck/internal/config"
	"github.com/shivam-909/leakcheck/internal/corpus"
	"github.com/shivam-909/leakcheck/internal/engine/tokenizer"
	"github.com/shivam-909/leakcheck/internal/leak"
	"github.com/shivam-909/leakcheck/internal/logging"
	"github.com/shivam-909/leakcheck/internal/memsample"
	"github.com/shivam-909/leakcheck/internal/metrics"
	"github.com/shivam-909/leakcheck/internal/report"
	"github.com/shivam-909/leakcheck/internal/scenario"
)

// ErrLeakDetected is returned in strict mode when any scenario fails.
var ErrLeakDetected = errors.New("leak detected")

type deps struct {
	sampler func(source string) (memsample.Sampler, error)
}

func defaultDeps() deps {
	return deps{sampler: memsample.New}
}

type flags struct {
	configPath  string
	engine      string
	sampler     string
	format      string
	metricsFile string
	profile     string
	scenarios   string
	corpus      string
	strict      bool
}

func newRootCmd(d deps) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "leakcheck",
		Short: "Check a pooled engine for memory growth across its lifecycle",
		Long: `leakcheck runs two experiments against the engine:

  sustained  one session, many process/release cycles, then deinitialize
  reinit     repeated initialize, process, deinitialize rounds

and compares memory after each against a baseline. The report goes to
stdout and logs to stderr. Verdicts are informational unless --strict.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.Flags(), f, d, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&f.engine, "engine", "", fmt.Sprintf("engine mode %v", tokenizer.Modes()))
	fs.StringVar(&f.sampler, "sampler", "", "memory source: peak or resident")
	fs.StringVar(&f.format, "format", "", fmt.Sprintf("report format %v", report.Formats()))
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here")
	fs.StringVar(&f.profile, "profile", "", "profile the run: cpu or mem")
	fs.StringVar(&f.scenarios, "scenario", "", "comma separated scenarios to run (sustained, reinit)")
	fs.StringVar(&f.corpus, "corpus", "", "YAML corpus file instead of the built-in texts")
	fs.BoolVar(&f.strict, "strict", false, "exit 1 when any scenario fails")

	cmd.AddCommand(newBenchCmd())
	return cmd
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(fs *pflag.FlagSet, f flags, cfg *config.Config) {
	if fs.Changed("engine") {
		cfg.Engine.Mode = f.engine
	}
	if fs.Changed("sampler") {
		cfg.Sampler = f.sampler
	}
	if fs.Changed("format") {
		cfg.Report.Format = f.format
	}
	if fs.Changed("metrics-file") {
		cfg.Report.MetricsFile = f.metricsFile
	}
	if fs.Changed("scenario") {
		cfg.SetScenarios(f.scenarios)
	}
	if fs.Changed("corpus") {
		cfg.Corpus = f.corpus
	}
	if fs.Changed("strict") {
		cfg.Report.Strict = f.strict
	}
}

func startProfile(mode string) (func(), error) {
	opts := []func(*profile.Profile){profile.ProfilePath("."), profile.NoShutdownHook}
	switch mode {
	case "":
		return func() {}, nil
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "mem":
		opts = append(opts, profile.MemProfile)
	default:
		return nil, fmt.Errorf("%w: profile %q (want cpu or mem)", config.ErrInvalid, mode)
	}
	p := profile.Start(opts...)
	return p.Stop, nil
}

// plainUnlessTerminal turns off report colors when w is not a terminal.
func plainUnlessTerminal(w io.Writer) {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return
	}
	pterm.DisableColor()
}

func loadCorpus(path string) (*corpus.Corpus, error) {
	if path == "" {
		return corpus.Default(), nil
	}
	return corpus.Load(path)
}

func run(ctx context.Context, fs *pflag.FlagSet, f flags, d deps, stdout, stderr io.Writer) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyFlags(fs, f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	stopProfile, err := startProfile(f.profile)
	if err != nil {
		return err
	}
	defer stopProfile()

	sampler, err := d.sampler(cfg.Sampler)
	if err != nil {
		return err
	}
	if err := memsample.Check(sampler); err != nil {
		return err
	}

	texts, err := loadCorpus(cfg.Corpus)
	if err != nil {
		return err
	}

	mode := tokenizer.Mode(cfg.Engine.Mode)
	eng, err := tokenizer.New(mode)
	if err != nil {
		return err
	}
	defer eng.Close()

	runner := scenario.NewRunner(eng, sampler, texts,
		scenario.WithLogger(logger),
		scenario.WithReclaim(cfg.Reclaim || mode == tokenizer.ModeHeap),
		scenario.WithEngine(cfg.Engine.Mode, cfg.Engine.Dictionary),
	)

	logger.Info("starting leak check",
		zap.String("engine", cfg.Engine.Mode),
		zap.String("sampler", cfg.Sampler),
		zap.Strings("scenarios", cfg.Scenarios),
		zap.Int("corpus_items", texts.Len()),
	)

	rep := scenario.NewReport(scenario.CurrentHost())
	for _, name := range cfg.Scenarios {
		switch name {
		case scenario.Sustained:
			_, err = runner.RunSustained(ctx, cfg.Sustained, rep)
		case scenario.Reinit:
			_, err = runner.RunReinit(ctx, cfg.Reinit, rep)
		}
		if err != nil {
			return fmt.Errorf("%s scenario: %w", name, err)
		}
	}

	st := eng.Stats()
	logger.Debug("engine stats",
		zap.Int("sessions", st.Sessions),
		zap.Int("calls", st.Calls),
		zap.Int("tokens", st.Tokens),
		zap.Int("leaked_pools", st.LeakedPools),
		zap.Int("live_results", st.LiveResults),
		zap.Int64("result_bytes", st.ResultBytes),
	)

	plainUnlessTerminal(stdout)
	if err := report.Write(cfg.Report.Format, stdout, rep); err != nil {
		return err
	}
	if cfg.Report.MetricsFile != "" {
		if err := metrics.Export(cfg.Report.MetricsFile, rep); err != nil {
			return err
		}
		logger.Info("metrics written", zap.String("path", cfg.Report.MetricsFile))
	}

	overall := rep.Overall()
	logger.Info("leak check finished", zap.Stringer("verdict", overall), zap.String("run_id", rep.RunID))
	if cfg.Report.Strict && overall == leak.Fail {
		return ErrLeakDetected
	}
	return nil
}
