// Package poll provides a small cancellable periodic task. Callers get an
// explicit handle instead of wiring timers and liveness flags by hand: the
// task runs once immediately, then on a fixed interval, can be kicked for an
// out-of-band run, and is guaranteed not to fire again after Stop.
package poll

import (
	"context"
	"sync"
	"time"
)

// Task is one tick of periodic work. Implementations must stop touching
// shared state once ctx is done; the ctx passed in is cancelled by Stop, so
// checking it before applying a fetched result is the whole late-callback
// guard.
type Task func(ctx context.Context)

// Handle controls a running periodic task.
type Handle struct {
	cancel context.CancelFunc
	kick   chan struct{}
	done   chan struct{}

	stopOnce sync.Once
}

// Start launches the task loop: one immediate run, then one run per
// interval until Stop is called.
func Start(interval time.Duration, task Task) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		cancel: cancel,
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		task(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-h.kick:
			}
			if ctx.Err() != nil {
				return
			}
			task(ctx)
		}
	}()

	return h
}

// Kick requests an immediate run. It never blocks; a kick while one is
// already pending is coalesced.
func (h *Handle) Kick() {
	select {
	case h.kick <- struct{}{}:
	default:
	}
}

// Stop cancels the task's context and waits for the loop to exit. After
// Stop returns, the task will not run again.
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}
