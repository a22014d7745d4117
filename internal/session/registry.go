package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tablepay-gateway/internal/metrics"
	"tablepay-gateway/internal/poll"
)

// Registry hands out one shared Watcher per table token and tears the
// watcher down when its last holder releases it, so the gateway polls each
// table at most once regardless of how many viewers sit at it.
type Registry struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger
	onTick   func(ok bool)

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	watcher *Watcher
	handle  *poll.Handle
	refs    int
}

// NewRegistry builds a registry polling each acquired table at interval.
// onTick, if set, observes every poll result (used for metrics).
func NewRegistry(fetcher Fetcher, interval time.Duration, logger *zap.Logger, onTick func(ok bool)) *Registry {
	return &Registry{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger,
		onTick:   onTick,
		entries:  make(map[string]*entry),
	}
}

// Acquire returns the watcher for token, starting it on first use. The
// caller must invoke release exactly once when done; the poll loop stops
// once every holder has released.
func (r *Registry) Acquire(token string) (*Watcher, func()) {
	r.mu.Lock()
	e, ok := r.entries[token]
	if !ok {
		w := newWatcher(token, r.fetcher, r.logger)
		task := func(ctx context.Context) {
			w.tick(ctx)
			if r.onTick != nil && ctx.Err() == nil {
				cur := w.Current()
				r.onTick(cur.Err == nil && cur.Snapshot != nil)
			}
		}
		e = &entry{watcher: w, handle: poll.Start(r.interval, task)}
		w.kick = e.handle.Kick
		r.entries[token] = e
		metrics.ActiveWatchers.Inc()
		r.logger.Info("session watcher started", zap.String("tableToken", token))
	}
	e.refs++
	r.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() { r.release(token) })
	}
	return e.watcher, release
}

func (r *Registry) release(token string) {
	r.mu.Lock()
	e, ok := r.entries[token]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.entries, token)
	r.mu.Unlock()

	e.handle.Stop()
	metrics.ActiveWatchers.Dec()
	r.logger.Info("session watcher stopped", zap.String("tableToken", token))
}

// Kick forces an immediate poll on the watcher for token, if one is
// running. Used after a payment settles so viewers see the new balance
// without waiting out the interval.
func (r *Registry) Kick(token string) {
	r.mu.Lock()
	e, ok := r.entries[token]
	r.mu.Unlock()
	if ok {
		e.handle.Kick()
	}
}

// Close stops every running watcher. Used during shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.handle.Stop()
		metrics.ActiveWatchers.Dec()
	}
}
