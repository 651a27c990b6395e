// Command leakcheck drives a pooled tokenizer engine through the sustained
// load and repeated reinitialization experiments and reports whether its
// memory grows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(defaultDeps())
	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "leakcheck:", err)
		stop()
		os.Exit(1)
	}
}
