// Package signals provides a process-lifetime context that cancels on
// SIGINT/SIGTERM, adapted from the teacher's pkg/lib/signals so
// cmd/fmfind can hand the search loop a context that reacts to Ctrl-C
// the same way OLM's operators do.
package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var (
	signalCtx context.Context
	cancel    context.CancelFunc
	once      sync.Once
)

// Context returns a context cancelled on SIGINT/SIGTERM. A second signal
// terminates the process immediately with exit code 1, giving a stuck
// search loop a hard way out.
func Context() context.Context {
	once.Do(func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, shutdownSignals...)
		signalCtx, cancel = context.WithCancel(context.Background())
		go func() {
			<-c
			cancel()
			<-c
			os.Exit(1)
		}()
	})
	return signalCtx
}
