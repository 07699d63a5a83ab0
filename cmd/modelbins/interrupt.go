package main

import (
	"context"

	"github.com/xlab/closer"
)

// interrupt turns a termination signal into a cancelled context.
// closer exits the process once the bound cleanup returns, so the cleanup
// waits until the caller has finished its own teardown.
type interrupt struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newInterrupt() *interrupt {
	ctx, cancel := context.WithCancel(context.Background())
	in := &interrupt{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	closer.Bind(func() {
		in.cancel()
		<-in.done
	})
	return in
}

// Context is cancelled when a signal arrives.
func (in *interrupt) Context() context.Context { return in.ctx }

// Stopped reports whether a signal asked the loop to end.
func (in *interrupt) Stopped() bool { return in.ctx.Err() != nil }

// Finish must be called once the caller has released its resources.
func (in *interrupt) Finish() {
	in.cancel()
	close(in.done)
}
