package signaler

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notify returns a channel receiving interrupt and termination signals
func notify() chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	return c
}

// WithInterrupt returns a context cancelled when the process is interrupted
// or when the returned cancel func is called
func WithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigC := notify()
	go func() {
		defer signal.Stop(sigC)
		select {
		case <-sigC:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
