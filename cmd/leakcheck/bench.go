package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shivam-909/leakcheck/internal/corpus"
	"github.com/shivam-909/leakcheck/internal/engine"
	"github.com/shivam-909/leakcheck/internal/engine/tokenizer"
)

type benchResult struct {
	Mode    tokenizer.Mode
	Ops     int
	Tokens  int
	Elapsed time.Duration
}

func (r benchResult) String() string {
	avg := time.Duration(0)
	if r.Ops > 0 {
		avg = r.Elapsed / time.Duration(r.Ops)
	}
	return fmt.Sprintf("%-12s || %d OPS || %d TOKENS || TOTAL: %v || AVERAGE: %v", r.Mode, r.Ops, r.Tokens, r.Elapsed, avg)
}

// bench times n process/release pairs in one session of a fresh engine.
func bench(mode tokenizer.Mode, texts *corpus.Corpus, n int) (benchResult, error) {
	eng, err := tokenizer.New(mode)
	if err != nil {
		return benchResult{}, err
	}
	defer eng.Close()

	if err := eng.Init(tokenizer.BuiltinDictionary); err != nil {
		return benchResult{}, err
	}
	defer eng.Deinit()

	r := benchResult{Mode: mode, Ops: n}
	var res engine.Result
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := eng.Process(texts.ItemAt(i).Text, &res); err != nil {
			return r, fmt.Errorf("process item %d: %w", i, err)
		}
		r.Tokens += res.Tokens
		eng.Release(&res)
	}
	r.Elapsed = time.Since(start)
	return r, nil
}

func newBenchCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "bench [mode...]",
		Short: "Time process/release throughput of the pooled and heap engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 1 {
				return fmt.Errorf("--ops must be positive, got %d", n)
			}
			modes := []tokenizer.Mode{tokenizer.ModeSound, tokenizer.ModeHeap}
			if len(args) > 0 {
				modes = modes[:0]
				for _, a := range args {
					modes = append(modes, tokenizer.Mode(a))
				}
			}
			texts := corpus.Default()
			for _, m := range modes {
				r, err := bench(m, texts, n)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "ops", "n", 100000, "process/release pairs per engine")
	return cmd
}
